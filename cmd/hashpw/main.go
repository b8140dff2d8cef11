// Command hashpw generates the bcrypt hash expected in
// AUTH_ADMIN_PASSWORD_HASH. Cost comes from AUTH_BCRYPT_COST.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	password, err := readPassword()
	if err != nil {
		log.Fatalf("failed to read password: %v", err)
	}
	if password == "" {
		log.Fatal("empty password")
	}

	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	fmt.Println(hash)
}

// readPassword takes the first argument, falling back to a line on stdin.
func readPassword() (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
