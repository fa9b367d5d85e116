// Prints a random secret suitable for the SECRET_KEY setting.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

func main() {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		fmt.Fprintln(os.Stderr, "can't generate secret:", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(key))
}
