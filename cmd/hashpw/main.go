// Command hashpw produces the bcrypt hash expected in ADMIN_PASSWORD_HASH.
// It reads the password from the terminal without echo.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/pmorel/cv-backend/internal/server/auth"
)

func main() {
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}
	if len(password) == 0 {
		log.Fatal("empty password")
	}

	hash, err := auth.HashPassword(string(password))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	fmt.Println(hash)
}
