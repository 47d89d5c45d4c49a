package admintools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/migration"
	"git.agora.community/agora/agora/src/website"
	"github.com/spf13/cobra"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admintools",
		Short: "Commands for managing accounts and data",
	}
	website.WebsiteCommand.AddCommand(adminCommand)

	createAdminCommand := &cobra.Command{
		Use:   "createadmin [email] [username] [password]",
		Short: "Create a new admin account",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 3 {
				fmt.Printf("You must provide an email, a username, and a password.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			email := args[0]
			username := args[1]
			password := args[2]

			if !auth.IsEmail(email) {
				fmt.Printf("'%s' does not look like an email address.\n", email)
				os.Exit(1)
			}
			if !auth.ValidatePassword(password) {
				fmt.Printf("Password must be at least 10 characters and contain a letter, a number, and a special character.\n")
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			existing, err := agoradata.FetchUsers(ctx, conn, agoradata.UsersQuery{
				Emails:         []string{email},
				IncludeDeleted: true,
			})
			if err != nil {
				panic(err)
			}
			if len(existing) == 0 {
				existing, err = agoradata.FetchUsers(ctx, conn, agoradata.UsersQuery{
					Usernames:      []string{username},
					IncludeDeleted: true,
				})
				if err != nil {
					panic(err)
				}
			}
			if len(existing) > 0 {
				fmt.Printf("A user with that email or username already exists.\n")
				os.Exit(1)
			}

			user, err := agoradata.CreateUser(ctx, conn, email, username, "", auth.HashPassword(password).String())
			if err != nil {
				panic(err)
			}
			user, err = agoradata.SetUserAdmin(ctx, conn, user.ID, true)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Created admin account '%s' (%s)\n", user.Username, user.ID)
		},
	}
	adminCommand.AddCommand(createAdminCommand)

	setPasswordCommand := &cobra.Command{
		Use:   "setpassword [username] [new password]",
		Short: "Replace a user's password",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a password.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			password := args[1]

			if !auth.ValidatePassword(password) {
				fmt.Printf("Password must be at least 10 characters and contain a letter, a number, and a special character.\n")
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			err := auth.UpdatePassword(ctx, conn, username, auth.HashPassword(password))
			if err != nil {
				if errors.Is(err, auth.ErrUserDoesNotExist) {
					fmt.Printf("User '%s' not found\n", username)
					os.Exit(1)
				}
				panic(err)
			}

			fmt.Printf("Successfully updated password for '%s'\n", username)
		},
	}
	adminCommand.AddCommand(setPasswordCommand)

	seedDataCommand := &cobra.Command{
		Use:   "seeddata",
		Short: "Drop the database and fill it with sample data",
		Run: func(cmd *cobra.Command, args []string) {
			migration.ResetDB()
			migration.SampleSeed()
		},
	}
	adminCommand.AddCommand(seedDataCommand)
}
