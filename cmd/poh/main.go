package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/event"
	"github.com/LICODX/rnr-poh/pkg/genesis"
	"github.com/LICODX/rnr-poh/pkg/logging"
	"github.com/LICODX/rnr-poh/pkg/wallet"
	"github.com/LICODX/rnr-poh/poh"
)

const usage = `usage: poh <command> [flags]

commands:
  keygen   write an encrypted signing key
  record   produce a chain and write it to stdout
  verify   read a chain and verify it

environment:
  POH_JSON_LOGS        "true" for JSON log lines
  POH_LOG_LEVEL        debug, info, warn or error
  POH_GENESIS_CONFIG   genesis config file
  POH_WALLET_FILE      keystore used to sign events
  POH_WALLET_PASSWORD  keystore password
`

func main() {
	logger := logging.NewStructuredLoggerTo(
		logging.ParseLevel(os.Getenv("POH_LOG_LEVEL")),
		os.Getenv("POH_JSON_LOGS") == "true",
		os.Stderr,
	)
	logging.SetDefaultLogger(logger)
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "keygen":
		err = runKeygen(os.Args[2:])
	case "record":
		err = runRecord(os.Args[2:], os.Stdout)
	case "verify":
		err = runVerify(os.Args[2:], os.Stdin)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		logger.ErrorWithFields("command failed", map[string]interface{}{
			"command": os.Args[1],
			"error":   err.Error(),
		})
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadGenesis(path string) (*genesis.GenesisConfig, error) {
	if path == "" {
		return genesis.DefaultGenesisConfig(), nil
	}
	logging.WithField("path", path).Info("loading genesis config")
	return genesis.LoadGenesisConfig(path)
}

func readPassword(prompt string) (string, error) {
	if pw := os.Getenv("POH_WALLET_PASSWORD"); pw != "" {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("POH_WALLET_PASSWORD is not set and stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func runKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	out := fs.String("out", envOr("POH_WALLET_FILE", "poh-key.json"), "keystore output path")
	force := fs.Bool("force", false, "overwrite an existing keystore")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if wallet.KeystoreExists(*out) && !*force {
		return fmt.Errorf("keystore %s already exists", *out)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if os.Getenv("POH_WALLET_PASSWORD") == "" {
		confirm, err := readPassword("Repeat password: ")
		if err != nil {
			return err
		}
		if confirm != password {
			return errors.New("passwords do not match")
		}
	}

	kp, err := wallet.NewKeypair()
	if err != nil {
		return err
	}
	if err := wallet.SaveKeypairToFile(kp, password, *out); err != nil {
		return err
	}

	logging.WithFields(map[string]interface{}{
		"path":       *out,
		"public_key": kp.PublicKey().String(),
	}).Info("keystore written")
	return nil
}

func loadSigner(path string) (*wallet.Keypair, error) {
	if path == "" {
		logging.Warn("no keystore given, signing with an ephemeral key (DEV MODE)")
		return wallet.NewKeypair()
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return nil, err
	}
	return wallet.LoadKeypairFromFile(password, path)
}

func runRecord(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	genesisPath := fs.String("genesis", os.Getenv("POH_GENESIS_CONFIG"), "genesis config file")
	walletPath := fs.String("wallet", os.Getenv("POH_WALLET_FILE"), "keystore used to sign events")
	ticks := fs.Int("n", 100, "number of entries to produce after genesis")
	eventsPer := fs.Int("events", 1, "timestamp events per event-bearing entry")
	format := fs.String("format", "json", "output format: json or rlp")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ticks < 0 {
		return fmt.Errorf("-n must not be negative, got %d", *ticks)
	}
	if *eventsPer < 0 {
		return fmt.Errorf("-events must not be negative, got %d", *eventsPer)
	}

	gc, err := loadGenesis(*genesisPath)
	if err != nil {
		return err
	}
	signer, err := loadSigner(*walletPath)
	if err != nil {
		return err
	}

	entries, err := record(gc, signer, *ticks, *eventsPer)
	if err != nil {
		return err
	}

	logging.WithFields(map[string]interface{}{
		"chain_id": gc.ChainID,
		"entries":  len(entries),
		"last_id":  entries[len(entries)-1].ID.TerminalString(),
	}).Info("chain recorded")

	return writeEntries(stdout, *format, entries)
}

// record produces the genesis entry followed by n entries, each preceded by
// HashesPerTick idle hashes. Every TicksPerEvent-th entry carries events.
func record(gc *genesis.GenesisConfig, signer event.Signer, n, eventsPer int) ([]poh.Entry, error) {
	if n < 0 || eventsPer < 0 {
		return nil, fmt.Errorf("invalid record sizes n=%d events=%d", n, eventsPer)
	}
	genesisEntry := gc.GenesisEntry()
	seq := poh.NewSequencer(genesisEntry.ID)
	entries := make([]poh.Entry, 0, n+1)
	entries = append(entries, genesisEntry)

	base := time.Unix(gc.GenesisTimestamp, 0).UTC()
	for i := 1; i <= n; i++ {
		seq.HashN(gc.HashesPerTick)

		if eventsPer > 0 && gc.TicksPerEvent > 0 && uint64(i)%gc.TicksPerEvent == 0 {
			events := make([]event.Event, 0, eventsPer)
			for j := 0; j < eventsPer; j++ {
				ts, err := event.NewTimestamp(signer, base.Add(time.Duration(i)*time.Second+time.Duration(j)))
				if err != nil {
					return nil, err
				}
				events = append(events, ts)
			}
			entries = append(entries, seq.Record(events))
			continue
		}
		entries = append(entries, seq.Tick())
	}
	return entries, nil
}

func writeEntries(w io.Writer, format string, entries []poh.Entry) error {
	switch format {
	case "json":
		bw := bufio.NewWriter(w)
		enc := json.NewEncoder(bw)
		for i := range entries {
			if err := enc.Encode(entries[i]); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
		}
		return bw.Flush()
	case "rlp":
		data, err := poh.EncodeEntries(entries)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func readEntries(r io.Reader, format string) ([]poh.Entry, error) {
	switch format {
	case "json":
		var entries []poh.Entry
		dec := json.NewDecoder(bufio.NewReader(r))
		for {
			var e poh.Entry
			err := dec.Decode(&e)
			if err == io.EOF {
				return entries, nil
			}
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", len(entries), err)
			}
			entries = append(entries, e)
		}
	case "rlp":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return poh.DecodeEntries(data)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func runVerify(args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	genesisPath := fs.String("genesis", os.Getenv("POH_GENESIS_CONFIG"), "genesis config file")
	in := fs.String("in", "-", "input file, - for stdin")
	format := fs.String("format", "json", "input format: json or rlp")
	parallel := fs.Bool("parallel", false, "verify all entries concurrently")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gc, err := loadGenesis(*genesisPath)
	if err != nil {
		return err
	}

	r := stdin
	if *in != "-" && strings.TrimSpace(*in) != "" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	entries, err := readEntries(r, *format)
	if err != nil {
		return err
	}

	if err := verify(gc.GenesisID(), entries, *parallel); err != nil {
		return err
	}

	logging.WithFields(map[string]interface{}{
		"chain_id": gc.ChainID,
		"entries":  len(entries),
	}).Info("chain verified")
	return nil
}

func verify(start core.Hash, entries []poh.Entry, parallel bool) error {
	if parallel {
		return poh.CheckEntries(start, entries)
	}
	v := poh.NewVerifier(start)
	return v.VerifyEntries(entries)
}
