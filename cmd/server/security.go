package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/config"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/derive"
)

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set")
	}
	if isBcryptHash(cfg.AdminPassword) {
		return nil
	}
	if err := validatePasswordStrength(cfg.AdminPassword); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD is too weak: %w", err)
	}
	return nil
}

// validatePasswordStrength rejects short passwords, single-class
// passwords and a short list of well-known defaults.
func validatePasswordStrength(password string) error {
	known := map[string]bool{
		"admin123": true, "password": true, "12345678": true, "123456789": true,
		"qwertyui": true, "storefront": true, "changeme": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}
	if len(password) < 10 {
		return fmt.Errorf("at least 10 characters required")
	}

	var letters, digits bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letters = true
		case unicode.IsDigit(r):
			digits = true
		}
	}
	if !letters || !digits {
		return fmt.Errorf("mix letters and digits")
	}
	return nil
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func writePreview(out io.Writer, layout []derive.LayoutItem) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(map[string]any{"layout": layout})
}
