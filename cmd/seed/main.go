// seed aplica o esquema e grava os dados iniciais do sistema: usuário
// administrador, as cinco redes de células e a primeira categoria.
//
// Uso: go run ./cmd/seed [caminho/schema.sql]
// Por padrão procura migrations/schema.sql no diretório atual. Idempotente:
// pode rodar mais de uma vez sem duplicar dados.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/infrastructure/postgres"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/config"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/logger"
)

const (
	adminEmail    = "admin@oalvocuritiba.com"
	adminName     = "Administrador"
	adminPassword = "kgdoamor123" // trocar no primeiro login
)

// Redes fixas da igreja, identificadas pela cor.
var networks = []struct{ cor, hex string }{
	{"Amarela", "#FFD700"},
	{"Azul", "#1E90FF"},
	{"Branca", "#F5F5F5"},
	{"Vermelha", "#DC143C"},
	{"Verde", "#2E8B57"},
}

func main() {
	schemaPath := "migrations/schema.sql"
	if len(os.Args) > 1 {
		schemaPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "carregar configuração: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", schemaPath).Msg("ler schema.sql")
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}
	log.Info().Str("path", schemaPath).Msg("esquema aplicado")

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash da senha do admin")
	}
	tag, err := pool.Exec(ctx, `
		INSERT INTO usuarios (nome, email, senha_hash, papel)
		VALUES ($1, $2, $3, 'ADMIN')
		ON CONFLICT (email) DO NOTHING`,
		adminName, adminEmail, string(hash))
	if err != nil {
		log.Fatal().Err(err).Msg("criar usuário admin")
	}
	if tag.RowsAffected() > 0 {
		log.Info().Str("email", adminEmail).Msg("usuário admin criado")
	} else {
		log.Info().Str("email", adminEmail).Msg("usuário admin já existia")
	}

	for _, n := range networks {
		if _, err := pool.Exec(ctx, `
			INSERT INTO redes (cor, hex) VALUES ($1, $2)
			ON CONFLICT (cor) DO NOTHING`,
			n.cor, n.hex); err != nil {
			log.Fatal().Err(err).Str("cor", n.cor).Msg("criar rede")
		}
	}
	log.Info().Int("redes", len(networks)).Msg("redes semeadas")

	if _, err := pool.Exec(ctx, `
		INSERT INTO categorias (nome, descricao, cor)
		VALUES ('GRÃOS E CEREAIS', 'Arroz, feijão, milho e derivados', '#8B4513')
		ON CONFLICT (nome) DO NOTHING`); err != nil {
		log.Fatal().Err(err).Msg("criar categoria inicial")
	}
	log.Info().Msg("seed concluído")
}
