package users

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

// InitUsers registers user and auth commands on the root command.
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts and authentication",
		Long: `Register, login or logout against the Proxication POI API.
Stores the token pair locally for future commands.`,
	}

	usersCmd.AddCommand(
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		meCmd(),
		listUsersCmd(),
	)
	rootCmd.AddCommand(usersCmd)
}

func registerCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"username":  username,
				"email":     email,
				"password":  password,
				"password2": password,
			}
			var user models.User
			if err := postJSON("/users/register/", payload, "", &user); err != nil {
				return err
			}
			fmt.Printf("Registered user %q (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login and store the token pair locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"username": username, "password": password}
			var resp struct {
				Access  string      `json:"access"`
				Refresh string      `json:"refresh"`
				User    models.User `json:"user"`
			}
			if err := postJSON("/users/login/", payload, "", &resp); err != nil {
				return err
			}
			if resp.Access == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveCredentials(config.Credentials{Access: resp.Access, Refresh: resp.Refresh}); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}
			fmt.Printf("Logged in as %q. Credentials stored locally.\n", resp.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Blacklist the refresh token and forget local credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := config.ReadCredentials()
			if err != nil {
				return fmt.Errorf("not logged in")
			}
			var resp struct {
				Msg string `json:"msg"`
			}
			if err := postJSON("/users/logout/", map[string]string{"refresh": creds.Refresh}, creds.Access, &resp); err != nil {
				return err
			}
			if err := config.ClearCredentials(); err != nil {
				return err
			}
			fmt.Println(resp.Msg)
			return nil
		},
	}
}

func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := config.ReadCredentials()
			if err != nil {
				return fmt.Errorf("not logged in")
			}
			var user models.User
			if err := getJSON("/users/user/", creds.Access, &user); err != nil {
				return err
			}
			output.RenderTable(
				[]string{"ID", "Username", "Email", "Created"},
				[][]interface{}{{strconv.Itoa(user.ID), user.Username, user.Email, user.CreatedAt.Format("2006-01-02")}},
			)
			return nil
		},
	}
}

func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := config.ReadCredentials()
			if err != nil {
				return fmt.Errorf("not logged in")
			}
			var users []models.User
			if err := getJSON("/users/users/", creds.Access, &users); err != nil {
				return err
			}
			if asJSON {
				b, _ := json.MarshalIndent(users, "", "  ")
				fmt.Println(string(b))
				return nil
			}
			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				rows = append(rows, []interface{}{strconv.Itoa(u.ID), u.Username, u.Email})
			}
			output.RenderTable([]string{"ID", "Username", "Email"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}

// postJSON POSTs payload to the API and decodes the response into out.
// token, when non-empty, is sent as a bearer credential.
func postJSON(path string, payload interface{}, token string, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return doJSON(req, out)
}

// getJSON GETs path with the bearer token and decodes the response into out.
func getJSON(path, token string, out interface{}) error {
	req, err := http.NewRequest("GET", config.APIURL()+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return doJSON(req, out)
}

func doJSON(req *http.Request, out interface{}) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if out != nil && len(body) > 0 {
		return json.Unmarshal(body, out)
	}
	return nil
}
