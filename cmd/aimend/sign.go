package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mnbossa/AImend/pkg/cli"
	"github.com/mnbossa/AImend/pkg/envelope"
)

// maxSignResponseBytes bounds the gateway reply printed by "sign --send".
const maxSignResponseBytes = 4 << 20

var signFlags struct {
	messages  []string
	role      string
	system    string
	model     string
	stream    bool
	secretEnv string
	send      bool
	url       string
	timeout   time.Duration
	format    string
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Build and sign a chat envelope",
	Long: `Build a chat envelope, stamp it with the current time and a fresh
nonce, and sign it with the shared secret.

The secret is read from the environment variable named by --secret-env, or
prompted for on the terminal without echo. Without --send the body and the
X-Signature header are printed so they can be sent with any HTTP client.

Examples:
  # Print a signed envelope
  aimend sign --secret-env WORKER_SHARED_SECRET -m "What is HMAC?"

  # Sign and send to a local gateway
  aimend sign --secret-env WORKER_SHARED_SECRET -m "hello" --send

  # Pick a model and add a system message
  aimend sign -m "hi" --system "Be brief." --model "deepseek-ai/DeepSeek-R1" --send`,
	RunE: runSign,
}

func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().StringArrayVarP(&signFlags.messages, "message", "m", nil, "message content (repeatable)")
	signCmd.Flags().StringVar(&signFlags.role, "role", "user", "role of the --message entries")
	signCmd.Flags().StringVar(&signFlags.system, "system", "", "system message placed before the others")
	signCmd.Flags().StringVar(&signFlags.model, "model", "", "upstream model identifier")
	signCmd.Flags().BoolVar(&signFlags.stream, "stream", false, "set stream=true in the envelope")
	signCmd.Flags().StringVar(&signFlags.secretEnv, "secret-env", "", "environment variable holding the shared secret (prompted for when empty)")
	signCmd.Flags().BoolVar(&signFlags.send, "send", false, "POST the envelope to --url and print the reply")
	signCmd.Flags().StringVar(&signFlags.url, "url", "http://127.0.0.1:8787/chat", "gateway chat URL used with --send")
	signCmd.Flags().DurationVar(&signFlags.timeout, "timeout", 30*time.Second, "request timeout used with --send")
	signCmd.Flags().StringVar(&signFlags.format, "format", "text", "output format: text, json")
}

// promptSecret reads the shared secret from the terminal without echo.
// It is a variable so tests can replace it.
var promptSecret = func(prompt io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --secret-env to pass the shared secret")
	}

	fmt.Fprint(prompt, "Shared secret: ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprint(prompt, "\n")
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(secret), nil
}

// signOutput carries the signed body as a string so it prints byte for byte.
type signOutput struct {
	Header    string `json:"header"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
	Body      string `json:"body"`
}

// sendOutput carries the gateway reply verbatim as a string.
type sendOutput struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func runSign(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(signFlags.format))
	if err != nil {
		return err
	}

	req, err := buildSignRequest()
	if err != nil {
		return err
	}

	secret, err := signingSecret(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sealed, err := envelope.NewSigner(secret).Seal(req)
	if err != nil {
		return err
	}

	if !signFlags.send {
		if signFlags.format == string(cli.FormatJSON) {
			return formatter.FormatTo(cmd.OutOrStdout(), signOutput{
				Header:    envelope.DefaultHeaderName,
				Signature: sealed.Signature,
				Nonce:     sealed.Nonce,
				Timestamp: sealed.Timestamp,
				Body:      string(sealed.Body),
			})
		}
		return formatter.FormatTo(cmd.OutOrStdout(), cli.Fields{
			{Key: envelope.DefaultHeaderName, Value: sealed.Signature},
			{Key: "Body", Value: string(sealed.Body)},
		})
	}

	status, body, err := sendEnvelope(cmd, sealed)
	if err != nil {
		return cli.NewCommandError("sign", err)
	}

	if signFlags.format == string(cli.FormatJSON) {
		if err := formatter.FormatTo(cmd.OutOrStdout(), sendOutput{Status: status, Body: string(body)}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "HTTP %d\n%s\n", status, body)
	}

	if status < 200 || status > 299 {
		return &cli.RejectedError{StatusCode: status, Body: string(body)}
	}
	return nil
}

func buildSignRequest() (envelope.Request, error) {
	if len(signFlags.messages) == 0 {
		return envelope.Request{}, errors.New("at least one --message is required")
	}
	role := strings.TrimSpace(signFlags.role)
	if role == "" {
		return envelope.Request{}, errors.New("--role must not be empty")
	}

	messages := make([]envelope.Message, 0, len(signFlags.messages)+1)
	if signFlags.system != "" {
		messages = append(messages, envelope.Message{Role: "system", Content: signFlags.system})
	}
	for _, m := range signFlags.messages {
		messages = append(messages, envelope.Message{Role: role, Content: m})
	}

	req := envelope.Request{Model: signFlags.model, Messages: messages}
	if signFlags.stream {
		stream := true
		req.Stream = &stream
	}
	return req, nil
}

func signingSecret(prompt io.Writer) (string, error) {
	if signFlags.secretEnv != "" {
		secret := os.Getenv(signFlags.secretEnv)
		if secret == "" {
			return "", fmt.Errorf("environment variable %s is not set", signFlags.secretEnv)
		}
		return secret, nil
	}

	secret, err := promptSecret(prompt)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", errors.New("shared secret must not be empty")
	}
	return secret, nil
}

func sendEnvelope(cmd *cobra.Command, sealed *envelope.Sealed) (int, []byte, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, signFlags.url, bytes.NewReader(sealed.Body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(envelope.DefaultHeaderName, sealed.Signature)

	client := &http.Client{Timeout: signFlags.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to %s failed: %w", signFlags.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSignResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
