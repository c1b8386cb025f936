package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/config"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/memory"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/seed"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	for _, pw := range []string{"", "admin123", "short1", "onlyletterspw", "1234567890123"} {
		err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, AdminPassword: pw})
		assert.Error(t, err, "password %q", pw)
	}
	assert.Error(t, validateSecurityConfig(config.Config{AuthSecret: "short", AdminPassword: "tamazight2026"}))
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	assert.NoError(t, validateSecurityConfig(config.Config{AuthSecret: strongSecret, AdminPassword: "tamazight2026"}))
	assert.NoError(t, validateSecurityConfig(config.Config{AuthSecret: strongSecret, AdminPassword: "$2a$10$abcdefghijklmnopqrstuv"}))
}

func TestPreviewPrintsLayoutFromSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`products:
  - id: 1
    name: كوب
    price: 300
    category: منزل
  - id: 2
    name: قلم
    price: 50
    category: مكتب
`), 0o600))

	var out bytes.Buffer
	err := preview(context.Background(), config.Config{SeedFile: path}, "منزل", &out)
	require.NoError(t, err)

	var body struct {
		Layout []struct {
			Kind     string `json:"kind"`
			Products []struct {
				Name string `json:"name"`
			} `json:"products"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	require.Len(t, body.Layout, 1)
	assert.Equal(t, "grid", body.Layout[0].Kind)
	require.Len(t, body.Layout[0].Products, 1)
	assert.Equal(t, "كوب", body.Layout[0].Products[0].Name)
}

func TestOpenRepositorySeedsSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	repo, closers, err := openRepository(ctx, config.Config{SQLitePath: path}, seed.Default())
	require.NoError(t, err)
	defer runClosers(closers)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(seed.DefaultProducts()))
}

func TestSeedIfEmptyKeepsExistingProducts(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.SaveProducts(ctx, seed.DefaultProducts()[:1]))

	require.NoError(t, seedIfEmpty(ctx, repo, seed.Default()))
	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "preview")
}
