package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"smartentrance/internal/apiclient"
	"smartentrance/internal/config"
	"smartentrance/internal/utils/crypto"
	"smartentrance/internal/utils/logger"
)

// Signs or verifies backend requests the way the gateway does, for debugging
// signature mismatches against the backend.
func main() {
	var log = logger.New("helper")
	log.Info("🔑 Starting request signature helper CLI")

	if err := godotenv.Load(); err != nil {
		log.Warn("⚠️ No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("❌ Failed to load configuration", err)
		return
	}
	if cfg.Backend.SigningSecret == "" {
		log.Warn("⚠️ BACKEND_SIGNING_SECRET is empty, the gateway sends unsigned requests")
		return
	}

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	for {
		choice := prompt("Enter 's' to sign, 'v' to verify, or 'q' to quit: ")
		if choice == "q" {
			log.Info("👋 Exiting helper CLI")
			break
		}
		if choice != "s" && choice != "v" {
			log.Warn("⚠️ Invalid choice. Please enter 's', 'v', or 'q'.")
			continue
		}

		method := strings.ToUpper(prompt("Method: "))
		if method == "" {
			method = http.MethodGet
		}
		path := prompt("Path: ")
		body := prompt("Body (empty for none): ")

		if choice == "s" {
			h := apiclient.Sign(cfg.Backend.SigningSecret, method, path, []byte(body), time.Now())
			log.Success("✅ %s: %s", apiclient.HeaderTimestamp, h.Get(apiclient.HeaderTimestamp))
			log.Success("✅ %s: %s", apiclient.HeaderSignature, h.Get(apiclient.HeaderSignature))
			continue
		}

		ts := prompt("Timestamp: ")
		sig := prompt("Signature: ")
		if crypto.VerifySignature(sig, cfg.Backend.SigningSecret, method, path, ts, body) {
			log.Success("✅ Signature matches")
		} else {
			log.Warn("⚠️ Signature does not match")
		}
	}
}
