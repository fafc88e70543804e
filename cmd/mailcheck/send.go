package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/laxmielectronics/site-api/internal/models"
)

type sendOptions struct {
	to       string
	subject  string
	html     string
	htmlFile string
	attach   []string
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one message and print the delivery outcome as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := opts.message()
			if err != nil {
				return err
			}

			transport, err := loadTransport(cmd.Context())
			if err != nil {
				return err
			}

			outcome := transport.Send(cmd.Context(), msg)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(outcome); err != nil {
				return err
			}

			if !outcome.Success {
				return fmt.Errorf("delivery failed: %s", outcome.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.to, "to", "", "recipient address")
	cmd.Flags().StringVar(&opts.subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&opts.html, "html", "<p>Test message from mailcheck.</p>", "HTML body")
	cmd.Flags().StringVar(&opts.htmlFile, "html-file", "", "read the HTML body from a file")
	cmd.Flags().StringSliceVar(&opts.attach, "attach", nil, "file to attach (repeatable)")
	_ = cmd.MarkFlagRequired("to")      //nolint:errcheck
	_ = cmd.MarkFlagRequired("subject") //nolint:errcheck

	return cmd
}

func (o *sendOptions) message() (*models.EmailMessage, error) {
	html := o.html
	if o.htmlFile != "" {
		data, err := os.ReadFile(o.htmlFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read --html-file: %w", err)
		}
		html = string(data)
	}

	msg := &models.EmailMessage{To: o.to, Subject: o.subject, HTML: html}
	for _, path := range o.attach {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("attachment %s: %w", path, err)
		}
		msg.Attachments = append(msg.Attachments, models.Attachment{
			Filename: filepath.Base(path),
			Path:     path,
		})
	}
	return msg, nil
}
