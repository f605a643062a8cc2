package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"resume-extractor/internal/fields"
	"resume-extractor/internal/resumes"
	"resume-extractor/internal/shared/config"
	localstore "resume-extractor/internal/shared/storage/object/local"
)

type extractOptions struct {
	out         string
	format      string
	strictPhone bool
	region      string
	links       bool
}

func newExtractCmd() *cobra.Command {
	cfg := config.Load()
	opts := extractOptions{
		format:      "csv",
		region:      cfg.PhoneRegion,
		strictPhone: fields.ParsePhonePolicy(cfg.PhonePolicy) == fields.PhonePolicyStrict,
	}

	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract name, email, phone and qualification into a CSV or XLSX file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default resume_info.<format>, \"-\" for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: csv or xlsx")
	cmd.Flags().BoolVar(&opts.strictPhone, "strict-phone", opts.strictPhone, "keep only numbers in the region's country code")
	cmd.Flags().StringVar(&opts.region, "region", opts.region, "default phone region (ISO 3166 code)")
	cmd.Flags().BoolVar(&opts.links, "links", false, "add a View Resume column with embedded data links (csv only)")
	return cmd
}

func runExtract(ctx context.Context, opts extractOptions, paths []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}

	policy := fields.PhonePolicyNormalize
	if opts.strictPhone {
		policy = fields.PhonePolicyStrict
	}
	phone, err := fields.NewPhoneExtractor(opts.region, policy)
	if err != nil {
		return err
	}

	uploads, err := readUploads(paths)
	if err != nil {
		return err
	}

	stagingDir, err := os.MkdirTemp("", "resumectl-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	svc := &resumes.Service{
		Store:          localstore.New(stagingDir),
		Repo:           resumes.NewMemoryRepo(),
		Phone:          phone,
		EmbedViewLinks: opts.links && format == "csv",
	}
	batch, err := svc.ProcessBatch(ctx, "cli:"+currentUser(), uploads, func(p resumes.Progress) {
		fmt.Fprintln(stderr, p.String())
	})
	if err != nil {
		return err
	}
	for _, n := range batch.Skipped {
		fmt.Fprintf(stderr, "skipped %s: %s\n", n.FileName, n.Reason)
	}
	for _, n := range batch.Failed {
		fmt.Fprintf(stderr, "failed %s: %s\n", n.FileName, n.Reason)
	}

	var buf bytes.Buffer
	if format == "xlsx" {
		err = resumes.WriteXLSX(&buf, batch.Records)
	} else {
		err = resumes.WriteCSV(&buf, batch.Records, svc.EmbedViewLinks)
	}
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = "resume_info." + format
	}
	if out == "-" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(stderr, "wrote %d records to %s\n", len(batch.Records), out)
	return nil
}

func readUploads(paths []string) ([]resumes.Upload, error) {
	uploads := make([]resumes.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		uploads = append(uploads, resumes.Upload{
			FileName:    filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Data:        data,
		})
	}
	return uploads, nil
}

func currentUser() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "local"
}
