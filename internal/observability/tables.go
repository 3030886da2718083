package observability

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/jonathan/careermatch/internal/board"
	"github.com/jonathan/careermatch/internal/types"
)

// Score bands used to color match scores.
const (
	strongScore = 80
	fairScore   = 60
)

// maxCellWidth caps wrapped free-text columns.
const maxCellWidth = 48

func (p *Printer) render(headers []string, rows [][]string, configure func(cfg *tablewriter.Config)) error {
	table := tablewriter.NewWriter(p.out)
	defer func() { _ = table.Close() }()

	table.Header(headers)
	if configure != nil {
		table.Configure(configure)
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func (p *Printer) paint(attrs ...color.Attribute) func(...any) string {
	if !p.colors {
		return fmt.Sprint
	}
	return color.New(attrs...).SprintFunc()
}

// Matches writes matched jobs as a table.
func (p *Printer) Matches(cards []types.MatchingCard) error {
	green := p.paint(color.FgGreen, color.Bold)
	yellow := p.paint(color.FgYellow)
	red := p.paint(color.FgRed)

	rows := make([][]string, 0, len(cards))
	for i, c := range cards {
		score := fmt.Sprintf("%.0f%%", c.Score)
		switch {
		case c.Score >= strongScore:
			score = green(score)
		case c.Score >= fairScore:
			score = yellow(score)
		default:
			score = red(score)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.JobID,
			c.Title,
			c.Company,
			score,
			board.WorkTypeLabel(c.WorkType),
			orDash(c.DueDateText),
			strings.Join(c.Highlights, ", "),
		})
	}

	return p.render(
		[]string{"#", "Job ID", "Title", "Company", "Fit", "Work Type", "Due", "Highlights"},
		rows,
		func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignRight, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignRight}
		},
	)
}

// Board writes job board listings as a table.
func (p *Printer) Board(items []types.JobBoardItem) error {
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			it.ID,
			it.Title,
			it.Company,
			board.WorkTypeLabel(it.WorkType),
			strconv.Itoa(it.ViewCount),
			strconv.Itoa(it.LikeCount),
			orDash(it.DueDateText),
		})
	}
	return p.render(
		[]string{"#", "ID", "Title", "Company", "Work Type", "Views", "Likes", "Due"},
		rows,
		nil,
	)
}

// Courses writes recommended courses as a table.
func (p *Printer) Courses(courses []types.RecommendedCourse) error {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{c.Skill, c.Title, c.URL})
	}
	return p.render([]string{"Skill", "Course", "URL"}, rows, nil)
}

// Feed writes community posts as a table.
func (p *Printer) Feed(posts []types.FeedPost) error {
	liked := p.paint(color.FgRed)

	rows := make([][]string, 0, len(posts))
	for _, post := range posts {
		likes := strconv.Itoa(post.LikeCount)
		if post.IsLikedByMe {
			likes = liked("♥ " + likes)
		}
		content := post.Content
		if n := len(post.ImageURLs); n > 0 {
			content = strings.TrimSpace(fmt.Sprintf("%s [%d image(s)]", content, n))
		}
		rows = append(rows, []string{
			post.ID,
			orDash(post.AuthorName),
			content,
			likes,
			strconv.Itoa(post.CommentCount),
			post.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return p.render(
		[]string{"ID", "Author", "Post", "Likes", "Comments", "Posted"},
		rows,
		func(cfg *tablewriter.Config) {
			cfg.Row.Formatting.AutoWrap = tw.WrapNormal
			cfg.Row.ColMaxWidths.Global = maxCellWidth
		},
	)
}

// Comments writes a post's comments as a table.
func (p *Printer) Comments(comments []types.Comment) error {
	author := p.paint(color.FgCyan)

	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		alias := orDash(c.AuthorAlias)
		if c.IsPostAuthor {
			alias = author(alias + " (작성자)")
		}
		rows = append(rows, []string{c.ID, alias, c.Content, c.CreatedAt.Local().Format("2006-01-02 15:04")})
	}
	return p.render([]string{"ID", "Author", "Comment", "Posted"}, rows, nil)
}
