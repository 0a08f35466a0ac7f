package commands

import (
	"gvp-client/cmd/gvp/utils"
	"gvp-client/internal/serviceutil"
	"gvp-client/pkg/gvp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	contactsType  *string
	contactsFind  *string
	contactsLimit *int
)

func init() {
	contactsType = contactsCmd.Flags().StringP("type", "t", "teachers", "The kind of contacts to list: teachers, canteen or other.")
	contactsFind = contactsCmd.Flags().StringP("find", "f", "", "Rank contacts by similarity of their name to this query.")
	contactsLimit = contactsCmd.Flags().IntP("limit", "n", 5, "The amount of matches shown with --find, 0 shows all.")
	rootCmd.AddCommand(contactsCmd)
}

func homeroom(contact gvp.Contact) string {
	class, ok := contact.Homeroom()
	if !ok {
		return "-"
	}
	return class
}

var contactsCmd = &cobra.Command{
	Use:   "contacts [--type <type>] [--find <name>]",
	Short: "Lists school contacts.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		contactType, err := gvp.ParseContactType(*contactsType)
		if err != nil {
			serviceutil.Fatal("invalid contact type", err)
		}
		contacts, err := client(cmd).Contacts(cmd.Context(), contactType)
		if err != nil {
			serviceutil.Fatal("failed to list contacts", err)
		}

		if *contactsFind != "" {
			matches := gvp.MatchContacts(contacts, *contactsFind, *contactsLimit)
			done, err := utils.Output(outputMode(), matches)
			if err != nil {
				serviceutil.Fatal("failed to write output", err)
			}
			if done {
				return
			}

			t := utils.NewTable()
			t.AppendHeader(table.Row{"Match", "Name", "Homeroom", "Phone", "Mail"})
			for _, match := range matches {
				t.AppendRow(table.Row{
					int(match.Correlation * 100),
					match.Contact.FullName(),
					homeroom(match.Contact),
					match.Contact.Phone,
					match.Contact.Mail(),
				})
			}
			t.Render()
			return
		}

		done, err := utils.Output(outputMode(), contacts)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if done {
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Name", "Homeroom", "Phone", "Mail", "Description"})
		for _, contact := range contacts {
			description := ""
			if contact.Description != nil {
				description = utils.Truncate(*contact.Description, 50)
			}
			t.AppendRow(table.Row{
				contact.FullName(),
				homeroom(contact),
				contact.Phone,
				contact.Mail(),
				description,
			})
		}
		t.Render()
	},
}
