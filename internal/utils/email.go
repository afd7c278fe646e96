package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"lumina_back_office/internal/models"
)

func sendMail(to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(os.Getenv("MAIL_FROM")); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendShippingNotification prévient le client que sa commande est expédiée.
// Best effort : un échec est loggé, jamais remonté à la requête.
func SendShippingNotification(to string, order *models.Order) {
	go func() {
		html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif;">
	<h2>Votre commande %s est en route</h2>
	<p>Transporteur : %s</p>
	<p>Numéro de suivi : <strong>%s</strong></p>
</body>
</html>`, order.OrderNumber, order.ShippingInfo.Carrier, order.ShippingInfo.TrackingNumber)

		if err := sendMail(to, "Votre commande "+order.OrderNumber+" est expédiée", html); err != nil {
			log.Printf("⚠️ Échec envoi notification expédition: %v", err)
		}
	}()
}

// SendDeliveryNotification confirme la livraison au client
func SendDeliveryNotification(to string, order *models.Order) {
	go func() {
		html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif;">
	<h2>Votre commande %s a été livrée</h2>
	<p>Merci pour votre confiance.</p>
</body>
</html>`, order.OrderNumber)

		if err := sendMail(to, "Votre commande "+order.OrderNumber+" est livrée", html); err != nil {
			log.Printf("⚠️ Échec envoi notification livraison: %v", err)
		}
	}()
}
