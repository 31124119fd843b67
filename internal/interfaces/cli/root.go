// Package cli expone las búsquedas de duplicados como comandos de operación (dedupctl).
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/customer-dedup/internal/application/dto"
	"github.com/jhoicas/customer-dedup/internal/application/duplicates"
	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
)

// Finder lo cumple *duplicates.DuplicateUseCase.
type Finder interface {
	DetectDuplicates(ctx context.Context, in dedup.SearchInput, threshold int) duplicates.Report
	DetectExactPhone(ctx context.Context, phone, companyName string) duplicates.Report
}

// Session recursos abiertos para un comando.
type Session struct {
	Finder           Finder
	DefaultThreshold int
	Close            func()
}

// Opener abre la sesión al ejecutar un comando (no al pedir --help).
type Opener func(ctx context.Context) (*Session, error)

// ErrDegraded la base de datos falló; la lista vacía no es concluyente.
var ErrDegraded = errors.New("búsqueda degradada: no se pudieron recuperar candidatos")

// NewRootCommand arma dedupctl con sus subcomandos.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "dedupctl",
		Short:         "Consulta de clientes duplicados",
		Long:          "Ejecuta contra la base de clientes las mismas búsquedas de duplicados que usa el alta de clientes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "salida JSON")
	root.AddCommand(newSearchCmd(open), newPhoneCmd(open))
	return root
}

func withSession(cmd *cobra.Command, open Opener, fn func(*Session) error) error {
	s, err := open(cmd.Context())
	if err != nil {
		return fmt.Errorf("abrir sesión: %w", err)
	}
	if s.Close != nil {
		defer s.Close()
	}
	return fn(s)
}

func render(cmd *cobra.Command, rep duplicates.Report) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		data, err := json.MarshalIndent(dto.NewDuplicateSearchResponse(rep.SearchID, rep.Candidates, rep.Degraded), "", "  ")
		if err != nil {
			return fmt.Errorf("serializar resultado: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		writeTable(cmd.OutOrStdout(), rep.Candidates)
	}
	if rep.Degraded {
		return fmt.Errorf("%w (search_id %s)", ErrDegraded, rep.SearchID)
	}
	return nil
}

func writeTable(out io.Writer, list []dedup.ScoredCustomer) {
	if len(list) == 0 {
		fmt.Fprintln(out, "Sin candidatos.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tMATCH\tREASONS\tID\tCOMPANY\tPHONE\tAFM")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.SimilarityScore, c.MatchType, reasons(c.MatchReasons), c.ID, c.CompanyName, c.Telephone, c.AFM)
	}
	tw.Flush()
}

func reasons(r dedup.MatchReasons) string {
	var parts []string
	if r.CompanyName {
		parts = append(parts, "name")
	}
	if r.Telephone {
		parts = append(parts, "phone")
	}
	if r.AFM {
		parts = append(parts, "afm")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
