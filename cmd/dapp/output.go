package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func parseOutput(s string) (string, error) {
	switch s {
	case "", outputText:
		return outputText, nil
	case outputJSON, outputYAML:
		return s, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", s)
	}
}

// render 按输出格式打印 v；text 格式交给 text 回调
func render(w io.Writer, format string, v any, text func(w io.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

// txResult 写操作的输出
type txResult struct {
	Action    string `json:"action" yaml:"action"`
	Signature string `json:"signature" yaml:"signature"`
	Explorer  string `json:"explorer" yaml:"explorer"`
	Account   string `json:"account,omitempty" yaml:"account,omitempty"`
	Greeting  string `json:"greeting,omitempty" yaml:"greeting,omitempty"`
}

func (r txResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s submitted\n", r.Action)
	if r.Account != "" {
		fmt.Fprintf(w, "  account:   %s\n", r.Account)
	}
	fmt.Fprintf(w, "  signature: %s\n", r.Signature)
	fmt.Fprintf(w, "  explorer:  %s\n", r.Explorer)
	if r.Greeting != "" {
		fmt.Fprintf(w, "  greeting:  %s\n", r.Greeting)
	}
}
