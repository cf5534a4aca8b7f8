package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vero-group/fleet-cli/internal/model"
	"github.com/vero-group/fleet-cli/internal/report"
)

var (
	reportKeys    []string
	reportColored bool
	reportInput   string
	reportServer  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the vehicles Excel report from a CSV file",
	Long:  "Posts the CSV to the reconciliation server and writes the result as vehicles_<iso-date>.xlsx, with optional row and label coloring.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := zap.L()

		serverURL := reportServer
		if serverURL == "" {
			serverURL = cfg.Client.ServerURL
		}

		vehicles, err := postVehicles(cmd.Context(), serverURL, reportInput)
		if err != nil {
			return err
		}
		log.Info("vehicles received", zap.Int("vehicles", len(vehicles)))

		now := time.Now()
		wb, err := report.Assemble(vehicles, reportKeys, reportColored, now)
		if err != nil {
			return eris.Wrap(err, "report: assemble")
		}

		name := report.Filename(now)
		if err := wb.Save(name); err != nil {
			return eris.Wrapf(err, "report: save %s", name)
		}

		log.Info("report written", zap.String("file", filepath.Clean(name)))
		return nil
	},
}

// postVehicles uploads the CSV to the server's /vehicles endpoint and decodes
// the reconciled record set from the response.
func postVehicles(ctx context.Context, serverURL, csvPath string) ([]model.Vehicle, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open %s", csvPath)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(csvPath))
	if err != nil {
		return nil, eris.Wrap(err, "report: create form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, eris.Wrap(err, "report: copy csv body")
	}
	if err := mw.Close(); err != nil {
		return nil, eris.Wrap(err, "report: close form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/vehicles", &buf)
	if err != nil {
		return nil, eris.Wrap(err, "report: create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "report: server vehicles call")
	}
	defer resp.Body.Close()

	var body struct {
		Message  string          `json:"message"`
		Vehicles []model.Vehicle `json:"vehicles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "report: decode response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("report: server vehicles call failed: %s", body.Message)
	}
	if len(body.Vehicles) == 0 {
		return nil, eris.New("report: no vehicles in server response")
	}

	return body.Vehicles, nil
}

func init() {
	reportCmd.Flags().StringSliceVarP(&reportKeys, "keys", "k", nil, "vehicle keys to add as Excel columns, e.g. -k gruppe,kurzname,info")
	reportCmd.Flags().BoolVarP(&reportColored, "colored", "c", false, "turn on Excel table coloring")
	reportCmd.Flags().StringVar(&reportInput, "input", "vehicles.csv", "path to the input CSV file")
	reportCmd.Flags().StringVar(&reportServer, "server", "", "reconciliation server URL (default from config)")
	rootCmd.AddCommand(reportCmd)
}
