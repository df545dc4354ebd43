package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oisee/x86lift/pkg/decode"
	"github.com/oisee/x86lift/pkg/il"
	"github.com/oisee/x86lift/pkg/lift"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "x86lift",
		Short: "x86 instruction lifter — decodes IA-32 bytes to a typed IL",
	}

	var startAddr string

	liftCmd := &cobra.Command{
		Use:   "lift [hex bytes]",
		Short: "Lift one instruction's worth of hex bytes to IL text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseHexBytes(strings.Join(args, ""))
			if err != nil {
				return err
			}
			addr, err := parseAddr(startAddr)
			if err != nil {
				return err
			}

			base := byteSliceOracle(code)
			stmts, next, err := lift.Lift(func(a uint32) (uint8, error) { return base(a - addr) }, addr)
			if err != nil {
				return err
			}

			fmt.Printf("%d bytes consumed (0x%x -> 0x%x)\n", next-addr, addr, next)
			for _, s := range stmts {
				fmt.Println(il.FormatStmt(s))
			}
			return nil
		},
	}
	liftCmd.Flags().StringVar(&startAddr, "addr", "0x0", "starting address the bytes are loaded at")

	var corpusVerbose bool
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Run the built-in determinism/length corpus check and report a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, total, err := runCorpusCheck(corpusVerbose)
			fmt.Printf("%d/%d corpus entries decoded deterministically\n", ok, total)
			return err
		},
	}
	corpusCmd.Flags().BoolVarP(&corpusVerbose, "verbose", "v", false, "print each corpus entry's result")

	rootCmd.AddCommand(liftCmd, corpusCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// byteSliceOracle serves code starting at address 0; addresses past the end
// are an InvalidEncoding error rather than a panic, matching the
// ByteOracle contract's "must not fail within a valid decode region".
func byteSliceOracle(code []byte) decode.ByteOracle {
	return func(addr uint32) (uint8, error) {
		if addr >= uint32(len(code)) {
			return 0, &decode.Error{Kind: decode.InvalidEncoding, Detail: "read past end of input"}
		}
		return code[addr], nil
	}
}

func parseHexBytes(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, "0X", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex bytes %q: %w", s, err)
	}
	return b, nil
}

func parseAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid --addr value %q: %w", s, err)
	}
	return uint32(v), nil
}

// corpusSample mirrors pkg/decode/corpus_test.go's representative-per-family
// spread, duplicated here (rather than exported from the test file, which
// Go does not allow importing from non-test code) so the CLI can exercise
// the same check interactively.
var corpusSample = map[string][]byte{
	"nop":           {0x90},
	"ret":           {0xC3},
	"mov eax,imm32": {0xB8, 0x2A, 0x00, 0x00, 0x00},
	"add eax,1":     {0x83, 0xC0, 0x01},
	"sub eax,eax":   {0x29, 0xC0},
	"rep movsb":     {0xF3, 0xA4},
	"jcc rel8":      {0x74, 0x02},
	"0f setcc":      {0x0F, 0x94, 0xC0},
}

func runCorpusCheck(verbose bool) (int, int, error) {
	ok := 0
	for name, code := range corpusSample {
		oracle := byteSliceOracle(code)
		_, next1, err1 := lift.Lift(oracle, 0)
		_, next2, err2 := lift.Lift(oracle, 0)
		pass := (err1 == nil) == (err2 == nil) && next1 == next2 && err1 == nil
		if pass {
			ok++
		}
		if verbose {
			status := "FAIL"
			if pass {
				status = "ok"
			}
			fmt.Printf("  %-16s %s\n", name, status)
		}
	}
	return ok, len(corpusSample), nil
}
