package gvp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContacts(t *testing.T) {
	school := newFakeSchool()
	client := newTestClient(t, school)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	teachers, err := client.Contacts(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, teachers, 2)

	novak := teachers[0]
	require.Equal(t, CONTACT_TEACHERS, novak.Type)
	require.Equal(t, "Mgr. Jan Novák", novak.FullName())
	require.Equal(t, "novak@gvp.cz", novak.Mail())
	require.Equal(t, "123 456 789", novak.Phone)
	homeroom, ok := novak.Homeroom()
	require.True(t, ok)
	require.Equal(t, "3.B", homeroom)

	dvorakova := teachers[1]
	require.Equal(t, "PhDr. Eva Dvořáková Ph.D.", dvorakova.FullName())
	require.Nil(t, dvorakova.Description)
	_, ok = dvorakova.Homeroom()
	require.False(t, ok)

	canteen, err := client.Contacts(ctx, CONTACT_CANTEEN)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, canteen, 1)
	// the type is taken from the request when the payload leaves it out
	require.Equal(t, CONTACT_CANTEEN, canteen[0].Type)
	require.Equal(t, "Jídelna", canteen[0].FullName())
	_, ok = canteen[0].Homeroom()
	require.False(t, ok)
}

func TestContactMail(t *testing.T) {
	require.Equal(t, "", Contact{Name: "Bez schránky"}.Mail())
	require.Equal(t, "x@gvp.cz", Contact{MailUser: "x"}.Mail())
}

func TestParseContactType(t *testing.T) {
	testCases := []struct {
		input    string
		expected ContactType
		fails    bool
	}{
		{input: "teachers", expected: CONTACT_TEACHERS},
		{input: " Canteen ", expected: CONTACT_CANTEEN},
		{input: "3", expected: CONTACT_OTHER},
		{input: "1", expected: CONTACT_TEACHERS},
		{input: "4", fails: true},
		{input: "students", fails: true},
	}
	for _, test := range testCases {
		contactType, err := ParseContactType(test.input)
		if test.fails {
			require.Error(t, err, test.input)
			continue
		}
		require.NoError(t, err, test.input)
		require.Equal(t, test.expected, contactType)
	}

	require.Equal(t, "ContactType(9)", ContactType(9).String())
}

func TestMatchContacts(t *testing.T) {
	contacts := []Contact{
		{Name: "Jan Novák"},
		{Name: "Eva Dvořáková", Degree: "PhDr."},
		{Name: "Petr Novotný"},
		{Name: "Karel Zeman"},
	}

	{
		matches := MatchContacts(contacts, "dvorakova", 0)
		require.NotEmpty(t, matches)
		require.Equal(t, "Eva Dvořáková", matches[0].Contact.Name)
		require.Equal(t, 1.0, matches[0].Correlation)
		for i := 1; i < len(matches); i++ {
			require.GreaterOrEqual(t, matches[i-1].Correlation, matches[i].Correlation)
		}
	}
	{
		matches := MatchContacts(contacts, "Jan Novak", 2)
		require.Len(t, matches, 2)
		require.Equal(t, "Jan Novák", matches[0].Contact.Name)
		require.Equal(t, 1.0, matches[0].Correlation)
		require.Less(t, matches[1].Correlation, 1.0)
	}
	{
		require.Empty(t, MatchContacts(contacts, "  ", 0))
	}
}

func TestStaticFiles(t *testing.T) {
	school := newFakeSchool()
	client := newTestClient(t, school)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	files, err := client.StaticFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, files, 2)
	require.Equal(t, int64(7), files[0].Id)
	require.Equal(t, "<p>Informace</p>", *files[0].Content)
	require.Nil(t, files[1].Content)

	file, err := client.StaticFile(ctx, 8)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Kontakty", file.Title)

	_, err = client.StaticFile(ctx, 100)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "static file", notFound.Kind)
}

func TestNews(t *testing.T) {
	school := newFakeSchool()
	client := newTestClient(t, school)

	news, err := client.News(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, news, 1)
	require.Equal(t, int64(5), news[0].Id)
	require.Equal(t, "Správce", news[0].Author.Name)
	require.Equal(t, time.Date(2019, 9, 1, 0, 0, 0, 0, prague(t)), news[0].Date)
}
