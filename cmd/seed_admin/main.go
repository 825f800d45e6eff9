// 初期 SUPER_ADMIN を登録するワンショットツール。
// すでに同じメールアドレスのアカウントがあれば何もしない。
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"LIBRIS-backend/internal/platform/auth"
	"LIBRIS-backend/internal/platform/db"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := db.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	name := cfg.Auth.SeedAdminName
	email := cfg.Auth.SeedAdminEmail
	password := cfg.Auth.SeedAdminPassword
	if email == "" || password == "" {
		log.Fatal("auth.seed_admin_email and auth.seed_admin_password are required")
	}
	if name == "" {
		name = "Administrator"
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	svc := auth.NewService(conn, []byte(cfg.Auth.JWTSecret))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := svc.CreateAdmin(ctx, name, email, password, auth.RoleSuperAdmin)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			log.Printf("[INFO] admin already exists: %s", email)
			return
		}
		log.Fatal(err)
	}
	log.Printf("[INFO] created super admin: %s (%s)", a.Email, a.AdminID)
}
