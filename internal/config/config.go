package config

import (
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// WrapSetting names the cell wrapping behaviour selected on the command line.
type WrapSetting string

const (
	WrapOff   WrapSetting = "off"
	WrapChars WrapSetting = "chars"
	WrapWords WrapSetting = "words"
)

type Config struct {
	Filename         string
	Delimiter        string
	TabSeparated     bool
	IgnoreCase       bool
	NoHeaders        bool
	Columns          string
	Filter           string
	Find             string
	EchoColumn       string
	Prompt           string
	ColorColumns     bool
	Colorful         bool
	Wrap             string
	AutoReload       bool
	NoStreamingStdin bool
	ClipboardLimit   int

	// Internal
	IsPipedStdin  bool
	DelimiterChar byte
	SniffNeeded   bool
}

func New() *Config {
	return &Config{
		Delimiter:      ",",
		Wrap:           string(WrapOff),
		ClipboardLimit: 10000,
		DelimiterChar:  ',',
	}
}

// BindFlags registers the CLI surface on the root command.
func (c *Config) BindFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&c.Delimiter, "delimiter", "d", ",", `field delimiter (single char, or "auto" to sniff)`)
	fs.BoolVarP(&c.TabSeparated, "tab-separated", "t", false, "use tab as the delimiter")
	fs.BoolVarP(&c.IgnoreCase, "ignore-case", "i", false, "case-insensitive search and filter (smartcase)")
	fs.BoolVar(&c.NoHeaders, "no-headers", false, "treat the first row as data, not headers")
	fs.StringVar(&c.Columns, "columns", "", "regex: show only columns whose name matches")
	fs.StringVar(&c.Filter, "filter", "", "regex: show only rows with a matching cell")
	fs.StringVar(&c.Find, "find", "", "regex: jump to the first matching cell at startup")
	fs.StringVar(&c.EchoColumn, "echo-column", "", "print this column of the selected row on exit")
	fs.StringVar(&c.Prompt, "prompt", "", "status line prefix (ANSI escapes allowed)")
	fs.BoolVar(&c.ColorColumns, "color-columns", false, "cycle colors per column")
	fs.BoolVar(&c.Colorful, "colorful", false, "alias for --color-columns with colored headers")
	fs.StringVar(&c.Wrap, "wrap", string(WrapOff), "cell wrapping: off|chars|words")
	fs.BoolVar(&c.AutoReload, "auto-reload", false, "watch the file and reload on change")
	fs.BoolVar(&c.NoStreamingStdin, "no-streaming-stdin", false, "read stdin fully before showing anything")
	fs.IntVar(&c.ClipboardLimit, "clipboard-limit", 10000, "max rows for a column copy")
}

// Finalize validates flags, resolves the positional filename and detects a
// piped stdin. A nil error with empty Filename means the caller should spill
// stdin.
func (c *Config) Finalize(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("expected at most one filename, got %d arguments", len(args))
	}
	if len(args) == 1 {
		c.Filename = args[0]
	}

	c.IsPipedStdin = !term.IsTerminal(int(os.Stdin.Fd()))
	if c.Filename == "" && !c.IsPipedStdin {
		return errors.New("no file given and stdin is a terminal")
	}

	if c.TabSeparated {
		c.Delimiter = "\t"
	}
	switch {
	case c.Delimiter == "auto":
		c.SniffNeeded = true
	case c.Delimiter == `\t`:
		c.DelimiterChar = '\t'
	case len(c.Delimiter) == 1 && c.Delimiter[0] < 0x80:
		c.DelimiterChar = c.Delimiter[0]
	case c.Delimiter == "":
		return errors.New("delimiter should not be empty")
	case len([]rune(c.Delimiter)) == 1:
		return fmt.Errorf("delimiter should be within the ASCII range: %s is too fancy", c.Delimiter)
	default:
		return fmt.Errorf("delimiter should be exactly one character, got %s", c.Delimiter)
	}

	switch WrapSetting(c.Wrap) {
	case WrapOff, WrapChars, WrapWords:
	default:
		return fmt.Errorf("invalid wrap mode %q (want off, chars or words)", c.Wrap)
	}

	if c.AutoReload && c.Filename == "" {
		return errors.New("--auto-reload requires a filename")
	}
	if c.ClipboardLimit < 1 {
		return errors.New("--clipboard-limit must be positive")
	}
	if c.Colorful {
		c.ColorColumns = true
	}
	return nil
}

// ResolveDelimiter sniffs the delimiter from path when the user asked for
// "auto". A no-op unless sniffing is pending.
func (c *Config) ResolveDelimiter(path string) {
	if !c.SniffNeeded {
		return
	}
	c.SniffNeeded = false
	if d, ok := SniffDelimiter(path); ok {
		c.DelimiterChar = d
		c.Delimiter = string(rune(d))
		return
	}
	c.DelimiterChar = ','
}

func (c *Config) String() string {
	name := c.Filename
	if name == "" {
		name = "<stdin>"
	}
	return fmt.Sprintf("file=%s delim=%q headers=%v wrap=%s auto-reload=%v",
		name, string(rune(c.DelimiterChar)), !c.NoHeaders, c.Wrap, c.AutoReload)
}

// SmartCase reports whether matching for pattern should ignore case: the
// ignore-case flag is in effect only while the pattern has no uppercase.
func SmartCase(pattern string, ignoreCase bool) bool {
	if !ignoreCase {
		return false
	}
	for _, r := range pattern {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
