package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/yatube/yatube/internal/forms"
	"github.com/yatube/yatube/internal/output"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/pkg/logger"
)

var (
	flagPassword  string
	flagFirstName string
	flagLastName  string
	flagEmail     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user",
	Long: `Create a user with a password, subject to the same rules as the signup page.

  yatubectl user create leo --password s3cret-pass
  yatubectl user create leo --password s3cret-pass --first-name Leo --last-name Tolstoy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := &forms.SignupForm{
			Username:  args[0],
			FirstName: flagFirstName,
			LastName:  flagLastName,
			Email:     flagEmail,
			Password1: flagPassword,
			Password2: flagPassword,
		}
		if !form.Validate() {
			return formError(form.Errors)
		}

		user, err := services.NewUserService(db).Create(cmd.Context(), services.NewUser{
			Username:  form.Username,
			Password:  form.Password1,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
		})
		if err != nil {
			if errors.Is(err, services.ErrUsernameTaken) {
				return fmt.Errorf("user %q already exists", form.Username)
			}
			return fmt.Errorf("creating user: %w", err)
		}

		logger.Info("user_created", map[string]interface{}{
			"user_id":  user.ID.String(),
			"username": user.Username,
			"source":   "cli",
		})

		if flagJSON {
			return output.JSON(cmd.OutOrStdout(), user)
		}
		output.UserDetail(cmd.OutOrStdout(), *user)
		return nil
	},
}

// formError flattens field errors into one message with a stable field order.
func formError(fieldErrors map[string]string) error {
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msg := "invalid input:"
	for _, field := range fields {
		msg += fmt.Sprintf(" %s: %s", field, fieldErrors[field])
	}
	return errors.New(msg)
}

func init() {
	userCreateCmd.Flags().StringVar(&flagPassword, "password", "", "Password (at least 8 characters)")
	userCreateCmd.Flags().StringVar(&flagFirstName, "first-name", "", "First name")
	userCreateCmd.Flags().StringVar(&flagLastName, "last-name", "", "Last name")
	userCreateCmd.Flags().StringVar(&flagEmail, "email", "", "Email address")
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
