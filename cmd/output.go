package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/mrr-sync/internal/config"
)

// reserveStdout moves logging to stderr when it would otherwise share stdout
// with a YAML document.
func reserveStdout(c *config.Config) error {
	if c.Log.Output != "" && c.Log.Output != "stdout" {
		return nil
	}
	lc := c.Log
	lc.Output = "stderr"
	return config.InitLogger(lc)
}

// writeYAML encodes v to path, or to stdout when path is "-".
func writeYAML(stdout io.Writer, path string, v any) error {
	if path == "-" {
		return encodeYAML(stdout, v)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create output file")
	}
	if err := encodeYAML(f, v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "close output file")
	}
	return nil
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "flush yaml")
	}
	return nil
}
