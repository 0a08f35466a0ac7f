package gvp

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gvp-client/pkg/textutil"

	"github.com/antzucaro/matchr"
)

const report_client_contacts = "client.contacts"

// MailDomain is appended to the mailbox of a contact.
const MailDomain = "gvp.cz"

type ContactType int

const (
	CONTACT_TEACHERS ContactType = 1
	CONTACT_CANTEEN  ContactType = 2
	CONTACT_OTHER    ContactType = 3
)

func (t ContactType) String() string {
	switch t {
	case CONTACT_TEACHERS:
		return "teachers"
	case CONTACT_CANTEEN:
		return "canteen"
	case CONTACT_OTHER:
		return "other"
	}
	return fmt.Sprintf("ContactType(%d)", int(t))
}

// ParseContactType accepts either the name or the number of a contact type.
func ParseContactType(s string) (ContactType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range []ContactType{CONTACT_TEACHERS, CONTACT_CANTEEN, CONTACT_OTHER} {
		if s == t.String() || s == strconv.Itoa(int(t)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown contact type %q", s)
}

// Contact is a school employee.
type Contact struct {
	Name        string
	Description *string
	Phone       string
	// MailUser is the mailbox without the domain.
	MailUser string
	// Degree precedes the name, Degree2 follows it.
	Degree  string
	Degree2 string
	Type    ContactType
}

// FullName includes titles and degrees.
func (c Contact) FullName() string {
	name := c.Name
	if c.Degree != "" {
		name = c.Degree + " " + name
	}
	if c.Degree2 != "" {
		name = name + " " + c.Degree2
	}
	return name
}

var homeroomRegex = regexp.MustCompile(`[1-6]\.[A-F]`)

// Homeroom is the class a teacher is responsible for, if any.
func (c Contact) Homeroom() (string, bool) {
	if c.Description == nil {
		return "", false
	}
	match := homeroomRegex.FindString(*c.Description)
	return match, match != ""
}

func (c Contact) Mail() string {
	if c.MailUser == "" {
		return ""
	}
	return c.MailUser + "@" + MailDomain
}

type wireContact struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
	Mail        *string `json:"mail"`
	Degree      *string `json:"degree"`
	Degree2     *string `json:"degree2"`
	Type        *wireId `json:"type"`
}

func toContact(w wireContact, requested ContactType) (Contact, error) {
	fields := fieldErrors{record: "contact"}
	fields.require("name", w.Name != nil)
	if err := fields.err(); err != nil {
		return Contact{}, err
	}

	contactType := requested
	if w.Type != nil {
		contactType = ContactType(*w.Type)
	}

	return Contact{
		Name:        strings.TrimSpace(*w.Name),
		Description: w.Description,
		Phone:       strings.TrimSpace(derefOr(w.Phone, "")),
		MailUser:    strings.TrimSpace(derefOr(w.Mail, "")),
		Degree:      strings.TrimSpace(derefOr(w.Degree, "")),
		Degree2:     strings.TrimSpace(derefOr(w.Degree2, "")),
		Type:        contactType,
	}, nil
}

// Contacts lists the contacts of one type, CONTACT_TEACHERS when t is 0.
func (c *Client) Contacts(ctx context.Context, t ContactType) ([]Contact, error) {
	ctx, span := tracer.Start(ctx, "client:Contacts")
	defer span.End()

	if t == 0 {
		t = CONTACT_TEACHERS
	}
	params := url.Values{"type": {strconv.Itoa(int(t))}}

	var list []wireContact
	raw, err := fetchList(ctx, c, "contacts", params, &list)
	if err != nil {
		return nil, c.fail(span, report_client_contacts, err)
	}

	contacts := make([]Contact, 0, len(list))
	for i, w := range list {
		contact, err := toContact(w, t)
		if err != nil {
			return nil, c.fail(span, report_client_contacts, newParseError(
				"contacts", raw, fmt.Errorf("contact #%d: %w", i, err),
			))
		}
		contacts = append(contacts, contact)
	}

	c.tel.ReportCount(report_client_contacts, int64(len(contacts)))
	return contacts, nil
}

type ContactMatch struct {
	Contact     Contact
	Correlation float64
}

// MatchContacts ranks contacts by how similar their name is to query, ignoring
// case, diacritics and titles. At most limit matches are returned, all of them
// when limit <= 0.
func MatchContacts(contacts []Contact, query string, limit int) []ContactMatch {
	normalizedQuery := textutil.NormalizeName(query)
	if normalizedQuery == "" {
		return nil
	}

	matches := make([]ContactMatch, 0, len(contacts))
	for _, contact := range contacts {
		name := textutil.NormalizeName(contact.Name)
		similarity := matchr.JaroWinkler(normalizedQuery, name, false)
		if textutil.MatchName(contact.Name, []string{normalizedQuery}) {
			similarity = 1
		}
		if similarity == 0 {
			continue
		}
		matches = append(matches, ContactMatch{
			Contact:     contact,
			Correlation: similarity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Correlation > matches[j].Correlation
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
