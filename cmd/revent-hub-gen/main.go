// Command revent-hub-gen generates a typed aggregate from a JSON hub
// definition: the struct embedding *revent.Hub, one channel field per
// declared channel, a constructor, and per-channel grant helpers.
//
// Usage:
//
//	revent-hub-gen -f hub.json
//	revent-hub-gen -schema
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/go-openapi/swag"
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"mvdan.cc/gofumpt/format"
)

var log zerolog.Logger

// osExit is swapped out in tests.
var osExit = os.Exit

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelDebug}),
	))
}

// hubDef is the definition document this tool consumes.
type hubDef struct {
	Package  string       `json:"package" jsonschema:"description=Go package the generated file belongs to"`
	Hub      string       `json:"hub" jsonschema:"description=Name of the generated aggregate type"`
	Channels []channelDef `json:"channels"`
}

type channelDef struct {
	Name       string `json:"name" jsonschema:"description=Channel name; unique within the hub"`
	Capability string `json:"capability" jsonschema:"description=Go type every subscriber in the channel implements"`
}

var schemaReflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

func parseDefinition(data []byte) (*hubDef, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	var def hubDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}

	if def.Package == "" {
		return nil, fmt.Errorf("package is required")
	}
	if def.Hub == "" {
		return nil, fmt.Errorf("hub is required")
	}
	if len(def.Channels) == 0 {
		return nil, fmt.Errorf("at least one channel is required")
	}
	seen := make(map[string]struct{}, len(def.Channels))
	for _, ch := range def.Channels {
		if ch.Name == "" {
			return nil, fmt.Errorf("channel name is required")
		}
		if ch.Capability == "" {
			return nil, fmt.Errorf("channel %q: capability is required", ch.Name)
		}
		if _, dup := seen[ch.Name]; dup {
			return nil, fmt.Errorf("duplicate channel %q", ch.Name)
		}
		seen[ch.Name] = struct{}{}
	}
	return &def, nil
}

var hubTemplate = template.Must(template.New("hub").Funcs(template.FuncMap{
	"goName": swag.ToGoName,
}).Parse(`// Code generated by revent-hub-gen. DO NOT EDIT.

package {{ .Package }}

{{ $hub := goName .Hub }}import (
	"github.com/fogfish/opts"

	"github.com/BourgondAries/revent"
)

// {{ $hub }} is the {{ .Hub }} hub with its typed channels.
type {{ $hub }} struct {
	*revent.Hub
{{ range .Channels }}	{{ goName .Name }} *revent.Channel[{{ .Capability }}]
{{ end }}}

// New{{ $hub }} creates the hub and all of its channels.
func New{{ $hub }}(options ...opts.Option[revent.Hub]) *{{ $hub }} {
	h := &{{ $hub }}{Hub: revent.New(options...)}
{{ range .Channels }}	h.{{ goName .Name }} = revent.NewChannel[{{ .Capability }}](h, {{ printf "%q" .Name }})
{{ end }}	return h
}
{{ range .Channels }}
// Grant{{ goName .Name }} returns an emit-granted view of the {{ .Name }} channel.
func (h *{{ $hub }}) Grant{{ goName .Name }}(scope *revent.NodeScope) (*revent.Channel[{{ .Capability }}], error) {
	return revent.Grant(scope, h.{{ goName .Name }})
}
{{ end }}`))

func render(def *hubDef) ([]byte, error) {
	var buf bytes.Buffer
	if err := hubTemplate.Execute(&buf, def); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes(), format.Options{})
}

func processDefinition(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Error reading definition")
		return err
	}

	def, err := parseDefinition(data)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Error parsing definition")
		return err
	}

	src, err := render(def)
	if err != nil {
		log.Error().Err(err).Str("hub", def.Hub).Msg("Error rendering definition")
		return err
	}

	outPath := filepath.Join(filepath.Dir(path), swag.ToFileName(def.Hub)+".revent.go")
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		log.Error().Err(err).Str("path", outPath).Msg("Error writing generated file")
		return err
	}

	log.Info().Str("path", outPath).Msg("Generated file")
	return nil
}

func printSchema(w io.Writer) error {
	schema := schemaReflector.Reflect(&hubDef{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func main() {
	defPath := flag.String("f", "", "path to the hub definition document")
	schema := flag.Bool("schema", false, "print the definition document schema and exit")
	flag.Parse()

	if *schema {
		if err := printSchema(os.Stdout); err != nil {
			log.Error().Err(err).Msg("Error printing schema")
			osExit(1)
		}
		return
	}

	if *defPath == "" {
		flag.Usage()
		osExit(1)
		return
	}

	if err := processDefinition(*defPath); err != nil {
		osExit(1)
	}
}
