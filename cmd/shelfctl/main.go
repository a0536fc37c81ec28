package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global settings
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = strings.TrimRight(envURL, "/")
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "import":
		err = importCmd(apiURL, args)
	case "dedupe":
		err = dedupeCmd(apiURL, args)
	case "prices":
		err = pricesCmd(apiURL, args)
	case "stats":
		err = statsCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shelfctl - operator tool for a coinshelf server

USAGE:
  shelfctl <command> [options]

COMMANDS:
  import    Upload a JSON array of items into an account
  dedupe    List duplicate items in an account, optionally merging them
  prices    Print the current gold and silver quote
  stats     Print collection statistics for an account
  help      Show this help message

ENVIRONMENT:
  API_URL         Backend URL (default: http://localhost:8080)
  SHELF_EMAIL     Account email for commands that need one
  SHELF_PASSWORD  Account password for commands that need one

EXAMPLES:
  # Import an exported collection
  shelfctl import --file=collection.json

  # Show duplicates, then merge every group into its oldest item
  shelfctl dedupe
  shelfctl dedupe --merge

  # Current metal prices
  shelfctl prices`)
}

// accountFlags registers the credential flags shared by account commands
func accountFlags(fs *flag.FlagSet) (email, password *string) {
	email = fs.String("email", os.Getenv("SHELF_EMAIL"), "Account email")
	password = fs.String("password", os.Getenv("SHELF_PASSWORD"), "Account password")
	return email, password
}

func login(apiURL, email, password string) (*APIClient, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("--email and --password (or SHELF_EMAIL / SHELF_PASSWORD) are required")
	}
	client := NewAPIClient(apiURL)
	if err := client.Login(email, password); err != nil {
		return nil, err
	}
	return client, nil
}

func importCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	email, password := accountFlags(fs)
	file := fs.String("file", "", "JSON file holding an array of items")
	batch := fs.Int("batch", 200, "Items per upload request")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("--file is required")
	}
	if *batch < 1 {
		return fmt.Errorf("--batch must be positive")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%s is not a JSON array: %w", *file, err)
	}

	client, err := login(apiURL, *email, *password)
	if err != nil {
		return err
	}

	fmt.Printf("Importing %d items from %s\n", len(items), *file)
	added, failed := 0, 0
	for start := 0; start < len(items); start += *batch {
		end := min(start+*batch, len(items))
		result, err := client.BulkUpload(items[start:end])
		if err != nil {
			return err
		}
		added += result.Added
		for _, e := range result.Errors {
			failed++
			fmt.Printf("  item %d: %s\n", start+e.Index, e.Message)
		}
	}

	fmt.Printf("Done: %d added, %d rejected\n", added, failed)
	return nil
}

func dedupeCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("dedupe", flag.ExitOnError)
	email, password := accountFlags(fs)
	merge := fs.Bool("merge", false, "Merge every duplicate group into its first item")
	fs.Parse(args)

	client, err := login(apiURL, *email, *password)
	if err != nil {
		return err
	}

	groups, err := client.Duplicates()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("No duplicates found")
		return nil
	}

	for _, g := range groups {
		fmt.Printf("%s %s (%s): %d records\n", g.Key.Country, g.Key.Denomination, g.Key.Year, g.Count)
		if !*merge {
			continue
		}
		ids := make([]string, len(g.Items))
		for i, item := range g.Items {
			ids[i] = item.ID
		}
		merged, err := client.Merge(ids)
		if err != nil {
			return err
		}
		fmt.Printf("  merged into %s, quantity %d\n", merged.ID, merged.Quantity)
	}

	if !*merge {
		fmt.Printf("%d groups found, run with --merge to combine them\n", len(groups))
	}
	return nil
}

func pricesCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("prices", flag.ExitOnError)
	fs.Parse(args)

	prices, err := NewAPIClient(apiURL).MetalPrices()
	if err != nil {
		return err
	}

	fmt.Printf("Source:  %s (%s)\n", prices.Source, prices.Timestamp.Format("2006-01-02 15:04 MST"))
	fmt.Printf("Gold:    %10.2f USD/oz  %12.2f ZAR/oz\n", prices.GoldUSDPerOz, prices.GoldZARPerOz)
	fmt.Printf("Silver:  %10.2f USD/oz  %12.2f ZAR/oz\n", prices.SilverUSDPerOz, prices.SilverZARPerOz)
	if prices.Note != "" {
		fmt.Printf("Note:    %s\n", prices.Note)
	}
	return nil
}

func statsCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	email, password := accountFlags(fs)
	fs.Parse(args)

	client, err := login(apiURL, *email, *password)
	if err != nil {
		return err
	}
	stats, err := client.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Records:     %d (%d pieces)\n", stats.Records, stats.TotalQuantity)
	fmt.Printf("Total value: %.2f\n", stats.TotalValue)
	fmt.Printf("Historical:  %d\n", stats.HistoricalCount)
	for region, n := range stats.ByRegion {
		fmt.Printf("  %-16s %d\n", region, n)
	}
	if stats.Bullion.GoldFineGrams > 0 || stats.Bullion.SilverFineGrams > 0 {
		fmt.Printf("Gold:   %.2f g fine, melt %.2f USD\n", stats.Bullion.GoldFineGrams, stats.Bullion.GoldMeltUSD)
		fmt.Printf("Silver: %.2f g fine, melt %.2f USD\n", stats.Bullion.SilverFineGrams, stats.Bullion.SilverMeltUSD)
	}
	return nil
}
