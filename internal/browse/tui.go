// Package browse is the interactive terminal view over one company's extracted
// jobs: everything the extractor returned next to what the filters keep.
package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/atsfeed/internal/adapter"
	"github.com/amishk599/atsfeed/internal/model"
)

const timeLayout = "2006-01-02 15:04 MST"

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

const (
	paneExtracted = iota
	paneKept
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle   = headerStyle.Foreground(lipgloss.Color("39"))
	inactiveHeaderStyle = headerStyle.Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle    = lipgloss.NewStyle().Bold(true)
	jobSubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// pane is one scrollable job list.
type pane struct {
	title  string
	jobs   []model.NormalizedJob
	cursor int
	vp     viewport.Model
}

func (p *pane) move(delta int) {
	p.cursor = min(max(p.cursor+delta, 0), max(len(p.jobs)-1, 0))
}

// keepVisible scrolls the viewport so the cursor's item is on screen.
func (p *pane) keepVisible() {
	top := p.cursor * jobItemHeight
	bottom := top + jobItemHeight - 1
	switch {
	case top < p.vp.YOffset:
		p.vp.SetYOffset(top)
	case bottom >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(bottom - p.vp.Height + 1)
	}
}

type browseModel struct {
	panes  [2]pane
	active int
	width  int
	height int
	ready  bool

	view     viewState
	detail   model.NormalizedJob
	detailVP viewport.Model
	showBody bool

	wantQuit bool
}

func newBrowseModel(extracted, kept []model.NormalizedJob) browseModel {
	sortByRecency(extracted)
	sortByRecency(kept)
	return browseModel{panes: [2]pane{
		{title: "Extracted", jobs: extracted},
		{title: "Kept", jobs: kept},
	}}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if m.view == viewDetail {
			m.detailVP.Width = m.width - 4
			m.detailVP.Height = m.height - 4
			m.detailVP.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		return m, tea.Quit
	case "tab", "left", "right":
		m.active = 1 - m.active
		m.refresh()
		return m, nil
	case "up", "k":
		m.panes[m.active].move(-1)
		m.refresh()
		m.panes[m.active].keepVisible()
		return m, nil
	case "down", "j":
		m.panes[m.active].move(1)
		m.refresh()
		m.panes[m.active].keepVisible()
		return m, nil
	case "enter":
		return m.openDetail()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	m.panes[m.active].vp, cmd = m.panes[m.active].vp.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detail.URL)
		return m, nil
	case "r":
		if m.detail.ContentHTML != "" {
			m.showBody = !m.showBody
			m.detailVP.SetContent(m.renderDetail())
			m.detailVP.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailVP, cmd = m.detailVP.Update(msg)
	return m, cmd
}

func (m browseModel) openDetail() (tea.Model, tea.Cmd) {
	p := m.panes[m.active]
	if len(p.jobs) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detail = p.jobs[p.cursor]
	m.showBody = false
	m.detailVP = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.detailVP.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) layout() {
	// 2 border chars per pane + 1 gap between panes.
	w := max((m.width-5)/2, 20)
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	h := max(m.height-4, 5)

	for i := range m.panes {
		if !m.ready {
			m.panes[i].vp = viewport.New(w, h)
			continue
		}
		m.panes[i].vp.Width = w
		m.panes[i].vp.Height = h
	}
	m.ready = true
	m.refresh()
}

func (m *browseModel) refresh() {
	for i := range m.panes {
		p := &m.panes[i]
		p.vp.SetContent(renderJobs(p.jobs, p.cursor, i == m.active))
	}
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	var headers, bodies []string
	for i, p := range m.panes {
		hs, bs := inactiveHeaderStyle, inactiveBorderStyle
		if i == m.active {
			hs, bs = activeHeaderStyle, activeBorderStyle
		}
		header := hs.Render(fmt.Sprintf(" %s (%d)", p.title, len(p.jobs)))
		headers = append(headers, lipgloss.NewStyle().Width(p.vp.Width+2).Render(header), " ")
		bodies = append(bodies, bs.Width(p.vp.Width).Render(p.vp.View()), " ")
	}

	extracted, kept := len(m.panes[paneExtracted].jobs), len(m.panes[paneKept].jobs)
	status := fmt.Sprintf(" %d extracted | %d kept | %d filtered out    ←/→/Tab switch  ↑/↓ cursor  Enter detail  Esc back  q quit",
		extracted, kept, extracted-kept)

	return lipgloss.JoinHorizontal(lipgloss.Top, headers[:len(headers)-1]...) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, bodies[:len(bodies)-1]...) + "\n" +
		statusBarStyle.Width(m.width).Render(status)
}

func (m browseModel) viewDetail() string {
	status := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if m.detail.ContentHTML != "" {
		status = " o open URL  r description  esc/backspace back  ↑/↓ scroll  q quit"
	}
	return detailTitleStyle.Render("Job Details") + "\n" +
		activeBorderStyle.Width(m.width-2).Render(m.detailVP.View()) + "\n" +
		statusBarStyle.Width(m.width).Render(status)
}

func (m browseModel) renderDetail() string {
	j := m.detail
	var b strings.Builder

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}
	stamp := func(label string, t *time.Time) {
		if t != nil {
			field(label, t.Local().Format(timeLayout))
		}
	}

	field("Title", j.Title)
	field("Company", j.CompanyName)
	field("Location", j.LocationName)
	field("Source", string(j.Source))
	field("Job Key", j.JobKey)
	b.WriteByte('\n')

	stamp("Posted At", j.PostedAt)
	stamp("Updated At", j.UpdatedAt)
	if !j.IngestedAt.IsZero() {
		stamp("Ingested At", &j.IngestedAt)
	}
	field("Departments", j.Departments)
	field("Offices", j.Offices)

	b.WriteByte('\n')
	field("URL", j.URL)

	if j.ContentHTML == "" {
		return b.String()
	}

	wrap := max(m.width-8, 20)
	b.WriteByte('\n')
	if !m.showBody {
		b.WriteString(hintStyle.Render("  press r to read job description") + "\n")
		return b.String()
	}
	label := "── Job Description "
	b.WriteString(dividerStyle.Render(label+strings.Repeat("─", max(wrap-len(label), 3))) + "\n\n")
	b.WriteString(bodyStyle.Render(wordWrap(adapter.PlainText(j.ContentHTML), wrap)) + "\n")
	return b.String()
}

func renderJobs(jobs []model.NormalizedJob, cursor int, active bool) string {
	if len(jobs) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, j := range jobs {
		titleSt, subSt, prefix := jobTitleStyle, jobSubtitleStyle, "  "
		if active && i == cursor {
			titleSt, subSt, prefix = selectedJobTitleStyle, selectedJobSubtitleStyle, "> "
		}

		when := "n/a"
		if ts := j.Timestamp(); ts != nil {
			when = ts.Format("2006-01-02")
		}

		b.WriteString(prefix + titleSt.Render(j.Title) + "\n")
		b.WriteString(prefix + subSt.Render(fmt.Sprintf("%s · %s", j.LocationName, when)) + "\n")
		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// sortByRecency orders jobs newest first by Timestamp; undated jobs go last.
func sortByRecency(jobs []model.NormalizedJob) {
	sort.SliceStable(jobs, func(a, b int) bool {
		ta, tb := jobs[a].Timestamp(), jobs[b].Timestamp()
		if ta == nil || tb == nil {
			return ta != nil
		}
		return ta.After(*tb)
	})
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return strings.Join(append(lines, line), "\n")
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the split-pane browser over extracted and kept jobs. It returns
// wantQuit=true if the user pressed q/ctrl+c, false if they pressed esc to go
// back to the picker.
func Run(extracted, kept []model.NormalizedJob) (bool, error) {
	result, err := tea.NewProgram(newBrowseModel(extracted, kept), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	return result.(browseModel).wantQuit, nil
}
