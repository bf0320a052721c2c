package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Layr-Labs/multichain-signer/pkg/anySigner"
	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/coinRegistry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/Layr-Labs/multichain-signer/pkg/logger"
	"github.com/Layr-Labs/multichain-signer/pkg/txSigner"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	inputFlag := &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Path of the JSON signing input, '-' reads stdin",
		Value:   "-",
	}
	app := &cli.App{
		Name:  "anysigner",
		Usage: "Multichain transaction signer",
		Description: `The anysigner CLI builds, signs and compiles transactions for every supported
chain. Keys can be held in memory or in AWS KMS; without a key the preimage and compile
commands run the two-phase external signing flow by hand.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
				EnvVars: []string{"DEBUG"},
			},
			&cli.StringFlag{
				Name:    "coin",
				Aliases: []string{"c"},
				Usage:   "Coin id (e.g. 'bitcoin') or SLIP-44 coin type",
				EnvVars: []string{"COIN"},
			},
			&cli.StringFlag{
				Name:    "private-key",
				Usage:   "Private key (hex format, with or without 0x prefix)",
				EnvVars: []string{"PRIVATE_KEY"},
			},
			&cli.StringFlag{
				Name:    "aws-kms-key-id",
				Usage:   "AWS KMS key ID of a secp256k1 signing key",
				EnvVars: []string{"AWS_KMS_KEY_ID"},
			},
			&cli.StringFlag{
				Name:    "aws-region",
				Usage:   "AWS region of the KMS key",
				Value:   "us-east-1",
				EnvVars: []string{"AWS_REGION"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "coins",
				Usage:  "List supported coins",
				Action: coinsAction,
			},
			{
				Name:    "sign",
				Aliases: []string{"s"},
				Usage:   "Sign a JSON signing input with the configured key",
				Flags:   []cli.Flag{inputFlag},
				Action:  signAction,
			},
			{
				Name:   "preimage",
				Usage:  "Print the preimage hashes of a JSON signing input",
				Flags:  []cli.Flag{inputFlag},
				Action: preimageAction,
			},
			{
				Name:  "compile",
				Usage: "Attach externally produced signatures to a JSON signing input",
				Flags: []cli.Flag{
					inputFlag,
					&cli.StringSliceFlag{
						Name:     "signature",
						Usage:    "Hex signature, repeated in preimage order",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "public-key",
						Usage: "Hex public key, repeated in preimage order",
					},
				},
				Action: compileAction,
			},
			{
				Name:   "plan",
				Usage:  "Print the transaction plan of a JSON signing input",
				Flags:  []cli.Flag{inputFlag},
				Action: planAction,
			},
			{
				Name:      "validate-address",
				Usage:     "Check an address against the coin rules",
				ArgsUsage: "<address>",
				Action:    validateAddressAction,
			},
			{
				Name:  "derive-address",
				Usage: "Derive the address of a public key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "public-key",
						Usage:    "Hex public key",
						Required: true,
					},
				},
				Action: deriveAddressAction,
			},
			{
				Name:      "sign-message",
				Usage:     "Sign an off-chain message with --private-key",
				ArgsUsage: "<message>",
				Action:    signMessageAction,
			},
		},
		Before: validateFlags,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func validateFlags(c *cli.Context) error {
	if coin := c.String("coin"); coin != "" {
		if _, err := parseCoin(coin); err != nil {
			return err
		}
	}
	if c.String("private-key") != "" && c.String("aws-kms-key-id") != "" {
		return fmt.Errorf("cannot specify both --private-key and --aws-kms-key-id")
	}
	return nil
}

// parseCoin accepts a registry id or a numeric coin type.
func parseCoin(value string) (*coinRegistry.CoinItem, error) {
	if n, err := strconv.ParseUint(value, 10, 32); err == nil {
		return coinRegistry.GetCoin(coinRegistry.CoinType(n))
	}
	return coinRegistry.FindByID(strings.ToLower(strings.TrimSpace(value)))
}

func decodeHexList(values []string) ([][]byte, error) {
	out := make([][]byte, 0, len(values))
	for i, v := range values {
		b, err := codec.DecodeHex(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func setupLogger(c *cli.Context) (*zap.Logger, error) {
	return logger.NewLogger(&logger.LoggerConfig{
		Debug: c.Bool("debug"),
	})
}

type command struct {
	l      *zap.Logger
	coin   *coinRegistry.CoinItem
	signer *anySigner.AnySigner
}

func setup(c *cli.Context) (*command, error) {
	l, err := setupLogger(c)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	if c.String("coin") == "" {
		return nil, fmt.Errorf("--coin is required")
	}
	coin, err := parseCoin(c.String("coin"))
	if err != nil {
		return nil, err
	}
	return &command{l: l, coin: coin, signer: anySigner.NewAnySigner(l)}, nil
}

func setupDigestSigner(c *cli.Context, coin *coinRegistry.CoinItem) (txSigner.IDigestSigner, error) {
	if privateKey := c.String("private-key"); privateKey != "" {
		return txSigner.NewPrivateKeySignerFromHex(coin.PublicKeyType, privateKey)
	}
	if kmsKeyID := c.String("aws-kms-key-id"); kmsKeyID != "" {
		return txSigner.NewAWSKMSSigner(c.Context, kmsKeyID, c.String("aws-region"))
	}
	return nil, fmt.Errorf("must specify either --private-key or --aws-kms-key-id for signing")
}

func readInput(c *cli.Context) ([]byte, error) {
	path := c.String("input")
	if path == "-" {
		return io.ReadAll(c.App.Reader)
	}
	return os.ReadFile(path)
}

func printJSON(c *cli.Context, raw []byte) error {
	_, err := fmt.Fprintln(c.App.Writer, string(raw))
	return err
}

func coinsAction(c *cli.Context) error {
	for _, coin := range coinRegistry.Coins() {
		fmt.Fprintf(c.App.Writer, "%-10d %-16s %-6s %s\n", coin.CoinType, coin.ID, coin.Symbol, coin.Blockchain)
	}
	return nil
}

func signAction(c *cli.Context) error {
	cmd, err := setup(c)
	if err != nil {
		return err
	}
	input, err := readInput(c)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	signer, err := setupDigestSigner(c, cmd.coin)
	if err != nil {
		return err
	}
	if local, ok := signer.(*txSigner.PrivateKeySigner); ok {
		defer local.Zero()
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.l.Sugar().Infow("Signing transaction", "coin", cmd.coin.ID)
	out, err := txSigner.SignExternally(ctx, signer, cmd.signer, cmd.coin.CoinType, input)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	return printJSON(c, out)
}

func preimageAction(c *cli.Context) error {
	cmd, err := setup(c)
	if err != nil {
		return err
	}
	input, err := readInput(c)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	out, err := cmd.signer.PreImageHashes(cmd.coin.CoinType, input)
	if err != nil {
		return err
	}
	return printJSON(c, out)
}

func compileAction(c *cli.Context) error {
	cmd, err := setup(c)
	if err != nil {
		return err
	}
	input, err := readInput(c)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	signatures, err := decodeHexList(c.StringSlice("signature"))
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}
	publicKeys, err := decodeHexList(c.StringSlice("public-key"))
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}
	out, err := cmd.signer.Compile(cmd.coin.CoinType, input, signatures, publicKeys)
	if err != nil {
		return err
	}
	return printJSON(c, out)
}

func planAction(c *cli.Context) error {
	cmd, err := setup(c)
	if err != nil {
		return err
	}
	input, err := readInput(c)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	out, err := cmd.signer.Plan(cmd.coin.CoinType, input)
	if err != nil {
		return err
	}
	return printJSON(c, out)
}

func validateAddressAction(c *cli.Context) error {
	cmd, err := setup(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one address")
	}
	normalized, err := cmd.signer.NormalizeAddress(cmd.coin.CoinType, c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid %s address: %w", cmd.coin.Name, err)
	}
	fmt.Fprintln(c.App.Writer, normalized)
	return nil
}

func deriveAddressAction(c *cli.Context) error {
	cmd, err := setup(c)
	if err != nil {
		return err
	}
	raw, err := codec.DecodeHex(c.String("public-key"))
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}
	keyType := cmd.coin.PublicKeyType
	if keyType == keypair.Secp256k1Extended && len(raw) == 33 {
		keyType = keypair.Secp256k1
	}
	publicKey, err := keypair.NewPublicKey(keyType, raw)
	if err != nil {
		return err
	}
	addr, err := cmd.signer.DeriveAddress(cmd.coin.CoinType, publicKey, coinEntry.DerivationDefault, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, addr)
	return nil
}

func signMessageAction(c *cli.Context) error {
	cmd, err := setup(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one message")
	}
	key, err := codec.DecodeHex(c.String("private-key"))
	if err != nil || len(key) == 0 {
		return fmt.Errorf("sign-message requires --private-key")
	}
	sig, err := cmd.signer.SignMessage(cmd.coin.CoinType, key, c.Args().First())
	if err != nil {
		return err
	}
	out, err := json.Marshal(map[string]string{"signature": sig})
	if err != nil {
		return err
	}
	return printJSON(c, out)
}
