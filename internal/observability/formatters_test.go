package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careermatch/internal/dashboard"
	"github.com/jonathan/careermatch/internal/presentation"
	"github.com/jonathan/careermatch/internal/types"
)

func TestPrintScore(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScore("Backend Engineer", presentation.ModeRoll, presentation.Score{Skill: 79, Accessibility: 62, WorkType: 68})
	output := buf.String()

	assert.Contains(t, output, "PRESENTATION SCORE")
	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, LabelSkill)
	assert.Contains(t, output, " 79%")
	assert.Contains(t, output, " 62%")
	assert.Contains(t, output, " 68%")
}

func TestPrintExplain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExplain(&dashboard.ExplainView{
		JobID:            "42",
		Title:            "Backend Engineer",
		Company:          "Acme",
		Scores:           presentation.Score{Skill: 79, Accessibility: 57, WorkType: 45},
		MissingSkills:    []string{"Kubernetes", "Go"},
		ImpossibleReason: "마감된 공고",
		SourceURL:        "https://jobs.example.com/42",
	})
	output := buf.String()

	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, "Acme")
	assert.Contains(t, output, "Kubernetes")
	assert.Contains(t, output, "마감된 공고")
	assert.Contains(t, output, "https://jobs.example.com/42")
	assert.NotContains(t, output, "모든 핵심 기술을 충족했습니다")
}

func TestPrintExplain_NoMissingSkills(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExplain(&dashboard.ExplainView{Title: "DevOps Engineer"})

	assert.Contains(t, buf.String(), "모든 핵심 기술을 충족했습니다")
}

func TestPrintExplain_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExplain(nil)
	p.PrintProfile(nil, "")
	p.PrintDashboard(nil)

	assert.Empty(t, buf.String())
}

func TestPrintProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	location := "서울특별시 강남구"
	p.PrintProfile(&types.UserProfile{
		Name:     "Kim",
		Major:    "Computer Science",
		GPA:      "4.1",
		Location: &location,
	}, "https://api.example.com/uploads/me.png")
	output := buf.String()

	assert.Contains(t, output, "PROFILE")
	assert.Contains(t, output, "Computer Science")
	assert.Contains(t, output, location)
	assert.Contains(t, output, "Role:      -")
}

func TestPrintDashboard(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDashboard(&dashboard.Dashboard{
		Profile: &types.UserProfile{Name: "Kim"},
		Status:  types.MatchingStatusReady,
		Matches: []types.MatchingCard{{JobID: "1"}, {JobID: "2"}},
		Skills:  []string{"Go", "SQL", "Docker", "AWS", "React", "Kafka", "Redis"},
		Courses: []types.RecommendedCourse{{Skill: "Go", Title: "Go in Action", URL: "https://courses.example.com/go"}},
	})
	output := buf.String()

	assert.Contains(t, output, "Hello, Kim")
	assert.Contains(t, output, "READY (2 jobs)")
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "Redis")
	assert.Contains(t, output, "Go in Action (Go)")
}

func TestPrintBox_AlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("근무 형태 적합도", "A Very Long Company Name That Should Be Truncated To Fit The Box\n하이브리드")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	for _, line := range lines {
		assert.Equal(t, boxWidth, runewidth.StringWidth(line), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestBar(t *testing.T) {
	tests := []struct {
		value  int
		filled int
	}{
		{0, 0},
		{50, 10},
		{79, 15},
		{100, 20},
		{150, 20},
		{-5, 0},
	}

	for _, tt := range tests {
		bar := Bar(tt.value)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"), "value %d", tt.value)
		assert.Equal(t, barWidth, runewidth.StringWidth(bar))
	}
}

func TestMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	err := p.Matches([]types.MatchingCard{
		{JobID: "7", Title: "Backend Engineer", Company: "Acme", Score: 84.4, WorkType: "REMOTE", Highlights: []string{"Go", "AWS"}},
		{JobID: "9", Title: "Data Analyst", Company: "Globex", Score: 51, WorkType: "ONSITE"},
	})
	require.NoError(t, err)
	output := buf.String()

	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, "84%")
	assert.Contains(t, output, "재택 근무")
	assert.Contains(t, output, "출근 근무")
	assert.Contains(t, output, "Go, AWS")
	assert.NotContains(t, output, "\x1b[", "colors are off by default")
}

func TestMatches_Color(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = noColor })

	var buf bytes.Buffer
	p := NewPrinter(&buf).WithColor(true)

	require.NoError(t, p.Matches([]types.MatchingCard{{JobID: "7", Title: "Backend Engineer", Score: 91}}))

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "91%")
}

func TestBoard(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	err := p.Board([]types.JobBoardItem{
		{ID: "1", Title: "Frontend Developer", Company: "Initech", WorkType: "HYBRID", ViewCount: 120, LikeCount: 8},
	})
	require.NoError(t, err)
	output := buf.String()

	assert.Contains(t, output, "Frontend Developer")
	assert.Contains(t, output, "하이브리드")
	assert.Contains(t, output, "120")
}

func TestCourses(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	require.NoError(t, p.Courses([]types.RecommendedCourse{
		{Skill: "Docker", Title: "Docker Basics", URL: "https://courses.example.com/docker"},
	}))

	assert.Contains(t, buf.String(), "Docker Basics")
}

func TestFeedAndComments(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	posted := time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)

	require.NoError(t, p.Feed([]types.FeedPost{
		{ID: "p1", AuthorName: "Lee", Content: "면접 후기 공유합니다", ImageURLs: []string{"a.png"}, LikeCount: 3, IsLikedByMe: true, CommentCount: 1, CreatedAt: posted},
	}))
	require.NoError(t, p.Comments([]types.Comment{
		{ID: "c1", AuthorAlias: "익명1", Content: "감사합니다", IsPostAuthor: true, CreatedAt: posted},
	}))
	output := buf.String()

	assert.Contains(t, output, "면접 후기 공유합니다 [1 image(s)]")
	assert.Contains(t, output, "♥ 3")
	assert.Contains(t, output, "2025-03-01 09:30")
	assert.Contains(t, output, "익명1 (작성자)")
}

func TestSuccess(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Success("logged in as %s", "kim@example.com")

	assert.Equal(t, "logged in as kim@example.com\n", buf.String())
}
