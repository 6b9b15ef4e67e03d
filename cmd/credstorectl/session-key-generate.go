package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwhitlock-dev/credstore/pkg/sealbox"
)

// sessionKeyGenerateCmd represents the session-key > generate command
var sessionKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a session encryption key",
	Long: `
Generate a session encryption key

Use this command to generate a new Base64-encoded 256 bit session encryption key. Once generated, this key should be placed into the environment of
the credstore server. It is used to encrypt and authenticate every session token the server issues.

Example:

$ export CREDSTORE_SESSION_KEY="$(credstorectl session-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		bytes, _ := sealbox.RandomBytes(sealbox.KeySize)
		fmt.Printf("%s", base64.StdEncoding.Strict().EncodeToString(bytes))
	},
}

func init() {
	sessionKeyCmd.AddCommand(sessionKeyGenerateCmd)
}
