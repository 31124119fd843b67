package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/customer-dedup/internal/domain"
	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
)

func newSearchCmd(open Opener) *cobra.Command {
	var (
		in        dedup.SearchInput
		threshold int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Buscar posibles duplicados por nombre, teléfono y/o AFM",
		Example: `  dedupctl search --name "Αεροπορία Αιγαίου" --phone 2103541000
  dedupctl search --afm 094456789 --threshold 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !in.HasCriteria() {
				return fmt.Errorf("%w: indicar al menos --name, --phone o --afm", domain.ErrNoCriteria)
			}
			if cmd.Flags().Changed("threshold") && (threshold < 0 || threshold > 100) {
				return fmt.Errorf("%w: --threshold debe estar entre 0 y 100", domain.ErrInvalidInput)
			}
			return withSession(cmd, open, func(s *Session) error {
				th := threshold
				if !cmd.Flags().Changed("threshold") {
					th = s.DefaultThreshold
				}
				return render(cmd, s.Finder.DetectDuplicates(cmd.Context(), in, th))
			})
		},
	}
	cmd.Flags().StringVar(&in.CompanyName, "name", "", "nombre de empresa")
	cmd.Flags().StringVar(&in.Telephone, "phone", "", "teléfono")
	cmd.Flags().StringVar(&in.AFM, "afm", "", "AFM (NIF griego)")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", dedup.DefaultThreshold, "umbral 0-100 (por defecto el configurado)")
	return cmd
}

func newPhoneCmd(open Opener) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "phone <number>",
		Short: "Listar todos los clientes recuperados por teléfono, sin umbral",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, func(s *Session) error {
				return render(cmd, s.Finder.DetectExactPhone(cmd.Context(), args[0], name))
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "nombre de empresa para el puntaje")
	return cmd
}
