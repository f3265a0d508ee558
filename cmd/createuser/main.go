// Command createuser adds a user to the catalog database, e.g. the first
// staff account that can manage products.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"totestore/internal/auth"
	"totestore/internal/config"
	mydb "totestore/internal/db"
	"totestore/internal/logging"
	"totestore/internal/models"
)

func main() {
	username := flag.String("username", "", "login name")
	email := flag.String("email", "", "email address")
	password := flag.String("password", os.Getenv("CREATEUSER_PASSWORD"), "password (or CREATEUSER_PASSWORD)")
	role := flag.String("role", string(models.RoleStaff), "customer, staff or admin")
	token := flag.Bool("token", false, "print the user's API token")
	flag.Parse()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	db := mydb.MustOpen(cfg, log)

	ctx := context.Background()
	svc := auth.NewService(db)
	u, err := svc.CreateUser(ctx, *username, *email, *password, models.Role(*role))
	if err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("failed to create user")
	}
	log.Info().Uint("user_id", u.ID).Str("username", u.Username).Str("role", string(u.Role)).Msg("user created")

	if *token {
		t, err := svc.Token(ctx, u.ID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to issue token")
		}
		fmt.Println(t.Key)
	}
}
