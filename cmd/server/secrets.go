package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/config"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash of a password (read from stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password given")
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("no password given")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var genSecretCmd = &cobra.Command{
	Use:   "gen-secret",
	Short: "Print a random hex SESSION_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		buf := make([]byte, config.MinSecretBytes)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))
		return nil
	},
}
