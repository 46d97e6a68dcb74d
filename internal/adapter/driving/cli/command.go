// Package cli is the command-line driving adapter. It resolves the resident
// to insert from flags or a JSON document and hands it to a run function.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
)

// ErrNoResident is returned when neither flags nor --file supplied any field.
var ErrNoResident = errors.New("no resident given: use --full-name/--email/--address or --file")

// RunFunc performs the insert-and-notify for a resolved resident.
type RunFunc func(ctx context.Context, resident model.NewResident) error

type options struct {
	fullName string
	email    string
	address  string
	file     string
}

// NewCommand builds the residentwelcome root command. run is invoked once
// with the resolved resident; its error becomes the command's error.
func NewCommand(run RunFunc) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "residentwelcome",
		Short: "Insert a new resident and trigger the welcome webhook",
		Long: `Insert one resident into the configured store and POST the stored row
to the welcome webhook.

The resident comes from flags, from a JSON file ({"full_name","email","address"}),
or from stdin with --file -. Flags override fields read from the file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resident, err := resolveResident(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), resident)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.fullName, "full-name", "", "resident's full name")
	flags.StringVar(&opts.email, "email", "", "resident's email address")
	flags.StringVar(&opts.address, "address", "", "resident's street address")
	flags.StringVarP(&opts.file, "file", "f", "", `JSON file holding the resident, or "-" for stdin`)
	_ = cmd.MarkFlagFilename("file", "json")

	return cmd
}

func resolveResident(cmd *cobra.Command, opts options) (model.NewResident, error) {
	var resident model.NewResident

	if opts.file != "" {
		var err error
		resident, err = readResidentFile(opts.file, cmd.InOrStdin())
		if err != nil {
			return model.NewResident{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("full-name") {
		resident.FullName = opts.fullName
	}
	if flags.Changed("email") {
		resident.Email = opts.email
	}
	if flags.Changed("address") {
		resident.Address = opts.address
	}

	if resident.IsEmpty() {
		return model.NewResident{}, ErrNoResident
	}
	return resident, nil
}

func readResidentFile(path string, stdin io.Reader) (model.NewResident, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return model.NewResident{}, fmt.Errorf("open resident file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var resident model.NewResident
	if err := dec.Decode(&resident); err != nil {
		return model.NewResident{}, fmt.Errorf("decode resident %s: %w", path, err)
	}
	return resident, nil
}
