// cmd/adduser/main.go
// Creates or updates a user in the database.
//
// Usage:
//
//	go run ./cmd/adduser -email shooter@example.com -password testing -roles admin
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/chronolog/chronolog-api/config"
	bundb "github.com/chronolog/chronolog-api/db"
	"github.com/chronolog/chronolog-api/models"
)

func main() {
	email := flag.String("email", "", "account email (required)")
	password := flag.String("password", "", "plain-text password (required)")
	roles := flag.String("roles", "", "comma-separated roles, e.g. admin")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("bcrypt:", err)
	}

	roleList := []string{}
	for _, r := range strings.Split(*roles, ",") {
		if t := strings.ToLower(strings.TrimSpace(r)); t != "" {
			roleList = append(roleList, t)
		}
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(*email)),
		Password: string(hash),
		Roles:    roleList,
	}

	_, err = db.NewInsert().Model(user).
		On("CONFLICT (email) DO UPDATE SET password = EXCLUDED.password, roles = EXCLUDED.roles").
		Exec(context.Background())
	if err != nil {
		log.Fatal("insert user:", err)
	}

	fmt.Printf("user %q saved\n", user.Email)
}
