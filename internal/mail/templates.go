package mail

import (
	"fmt"

	"github.com/matcornic/hermes/v2"
)

const productName = "CoinShelf"

// Message is a rendered-on-demand email.
type Message struct {
	Subject string
	Body    hermes.Email
}

type Composer struct {
	h *hermes.Hermes
}

func NewComposer(frontendURL string) *Composer {
	return &Composer{h: &hermes.Hermes{
		Theme:         new(hermes.Default),
		TextDirection: hermes.TDLeftToRight,
		Product: hermes.Product{
			Name:        productName,
			Link:        frontendURL + "/",
			Copyright:   "© CoinShelf",
			TroubleText: "If the '{ACTION}' button does not work, copy and paste the URL below into your web browser.",
		},
	}}
}

// Render returns the HTML and plain text versions of msg.
func (c *Composer) Render(msg Message) (html, text string, err error) {
	html, err = c.h.GenerateHTML(msg.Body)
	if err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	text, err = c.h.GeneratePlainText(msg.Body)
	if err != nil {
		return "", "", fmt.Errorf("render text: %w", err)
	}
	return html, text, nil
}

func (c *Composer) Welcome(email string) Message {
	return Message{
		Subject: "Welcome to CoinShelf",
		Body: hermes.Email{Body: hermes.Body{
			Name: email,
			Intros: []string{
				"Welcome to CoinShelf! Your account is ready.",
				"You can now catalogue your coins, banknotes and bullion, track their value and share your collection.",
			},
			Actions: []hermes.Action{{
				Instructions: "Start adding items to your collection:",
				Button: hermes.Button{
					Text: "Open my collection",
					Link: c.h.Product.Link,
				},
			}},
			Outros: []string{"Happy collecting!"},
		}},
	}
}

func (c *Composer) PasswordChanged(email string) Message {
	return Message{
		Subject: "Your CoinShelf password was changed",
		Body: hermes.Email{Body: hermes.Body{
			Name: email,
			Intros: []string{
				"The password for your CoinShelf account was just changed.",
			},
			Outros: []string{
				"If you did not make this change, reset your password immediately and contact support.",
			},
		}},
	}
}

func (c *Composer) PasswordReset(email, resetURL string) Message {
	return Message{
		Subject: "Reset your CoinShelf password",
		Body: hermes.Email{Body: hermes.Body{
			Name: email,
			Intros: []string{
				"We received a request to reset the password for your CoinShelf account.",
			},
			Actions: []hermes.Action{{
				Instructions: "Click the button below to choose a new password. The link expires in one hour.",
				Button: hermes.Button{
					Color: "#DC4D2F",
					Text:  "Reset your password",
					Link:  resetURL,
				},
			}},
			Outros: []string{
				"If you did not request a password reset, no further action is required.",
			},
		}},
	}
}
