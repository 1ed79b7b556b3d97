// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command hashpw prints the bcrypt hash to use as ADMIN_PASSWORD_HASH.
//
// # Usage
//
//	echo -n 's3cret' | go run ./cmd/hashpw
//
// The password is read from stdin so it never lands in shell history.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/taibuivan/carta/internal/platform/sec"
)

// minPasswordLen matches the shortest admin password worth hashing.
const minPasswordLen = 8

func main() {
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		fmt.Fprintln(os.Stderr, "hashpw: no password on stdin")
		os.Exit(1)
	}
	password = strings.TrimRight(password, "\r\n")

	if len(password) < minPasswordLen {
		fmt.Fprintf(os.Stderr, "hashpw: password must be at least %d characters\n", minPasswordLen)
		os.Exit(1)
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
