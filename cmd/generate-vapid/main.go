package main

import (
	"fmt"
	"log"

	webpush "github.com/SherClockHolmes/webpush-go"
)

func main() {
	log.Println("🔐 Génération des clés VAPID...")

	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("❌ Erreur lors de la génération des clés: %v", err)
	}

	fmt.Println("\n✅ Clés VAPID générées avec succès!")
	fmt.Println("\nAjoutez ces lignes dans votre fichier .env:")
	fmt.Println()
	fmt.Println("VAPID_PUBLIC_KEY=" + publicKey)
	fmt.Println("VAPID_PRIVATE_KEY=" + privateKey)
	fmt.Println("VAPID_SUBJECT=mailto:contact@monpetitchef.fr")
	fmt.Println("\n⚠️  Important: Ne partagez JAMAIS votre clé privée!")
}
