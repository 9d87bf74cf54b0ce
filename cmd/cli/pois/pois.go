package pois

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/proxication/poi-api/cmd/cli/config"
	"github.com/proxication/poi-api/cmd/cli/output"
	"github.com/proxication/poi-api/internal/models"
	"github.com/spf13/cobra"
)

// InitPOIs registers POI commands on the root command.
func InitPOIs(rootCmd *cobra.Command) {
	poisCmd := &cobra.Command{
		Use:   "pois",
		Short: "Manage points of interest",
	}

	poisCmd.AddCommand(
		listPOIsCmd(),
		createPOICmd(),
		getPOICmd(),
		updatePOICmd(),
		deletePOICmd(),
	)
	rootCmd.AddCommand(poisCmd)
}

func listPOIsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all POIs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var pois []models.POI
			if err := request("GET", "/pois/", nil, &pois); err != nil {
				return err
			}
			if asJSON {
				b, _ := json.MarshalIndent(pois, "", "  ")
				fmt.Println(string(b))
				return nil
			}
			rows := make([][]interface{}, 0, len(pois))
			for _, p := range pois {
				rows = append(rows, []interface{}{
					strconv.Itoa(p.ID), p.Name,
					fmt.Sprintf("%.6f", p.Latitude), fmt.Sprintf("%.6f", p.Longitude),
					p.CreatedByUsername,
				})
			}
			output.RenderTable([]string{"ID", "Name", "Latitude", "Longitude", "Owner"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}

func createPOICmd() *cobra.Command {
	var name, description string
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a POI owned by the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"name":        name,
				"description": description,
				"latitude":    lat,
				"longitude":   lon,
			}
			var poi models.POI
			if err := request("POST", "/pois/", payload, &poi); err != nil {
				return err
			}
			fmt.Printf("Created POI %q (id %d)\n", poi.Name, poi.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "POI name")
	cmd.Flags().StringVar(&description, "description", "", "POI description")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees [-90, 90]")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees [-180, 180]")
	return cmd
}

func getPOICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one of your POIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var poi models.POI
			if err := request("GET", "/pois/"+args[0]+"/", nil, &poi); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(poi, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
}

func updatePOICmd() *cobra.Command {
	var name, description string
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace one of your POIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"name":        name,
				"description": description,
				"latitude":    lat,
				"longitude":   lon,
			}
			var poi models.POI
			if err := request("PUT", "/pois/"+args[0]+"/", payload, &poi); err != nil {
				return err
			}
			fmt.Printf("Updated POI %q (id %d)\n", poi.Name, poi.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "POI name")
	cmd.Flags().StringVar(&description, "description", "", "POI description")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees [-90, 90]")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees [-180, 180]")
	return cmd
}

func deletePOICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your POIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := request("DELETE", "/pois/"+args[0]+"/", nil, nil); err != nil {
				return err
			}
			fmt.Println("POI deleted.")
			return nil
		},
	}
}

// request sends an authenticated JSON request and decodes the response into out.
func request(method, path string, payload interface{}, out interface{}) error {
	creds, err := config.ReadCredentials()
	if err != nil {
		return fmt.Errorf("not logged in")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+creds.Access)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	if out != nil && len(b) > 0 {
		return json.Unmarshal(b, out)
	}
	return nil
}
