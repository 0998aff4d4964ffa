package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/utils"
)

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// UserDetail prints a single user's details.
func UserDetail(out io.Writer, u models.User) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Username:\t%s\n", u.Username)
	fmt.Fprintf(w, "Name:\t%s\n", u.FullName())
	if u.Email != "" {
		fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	}
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	w.Flush()
}

// GroupTable prints groups with their post counts.
func GroupTable(out io.Writer, groups []models.Group, counts map[uuid.UUID]int64) {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No groups found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tSLUG\tPOSTS\tCREATED")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", g.Title, g.Slug, counts[g.ID], RelativeTime(g.CreatedAt))
	}
	w.Flush()
}

// PostTable prints one page of posts followed by the page position.
func PostTable(out io.Writer, page utils.PageOf[models.Post]) {
	if len(page.Items) == 0 {
		fmt.Fprintln(out, "No posts found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTEXT\tAUTHOR\tGROUP\tPUBLISHED")
	for _, p := range page.Items {
		group := "-"
		if p.Group != nil {
			group = p.Group.Slug
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Label(), p.Author.Username, group, RelativeTime(p.CreatedAt))
	}
	w.Flush()

	fmt.Fprintf(out, "\nPage %d of %d (%d posts)\n", page.Number, page.NumPages, page.Total)
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
