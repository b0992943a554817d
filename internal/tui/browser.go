package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jasperwreed/bookstats/internal/models"
	"github.com/jasperwreed/bookstats/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00BFFF"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type Browser struct {
	store *storage.SQLiteStore
}

func NewBrowser(store *storage.SQLiteStore) *Browser {
	return &Browser{store: store}
}

func (b *Browser) Run() error {
	m := initialModel(b.store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

type listItem struct {
	book models.BookSummary
}

func (i listItem) FilterValue() string {
	return i.book.Title
}

func (i listItem) Title() string {
	return i.book.Title
}

func (i listItem) Description() string {
	desc := fmt.Sprintf("%s words | %s", humanize.Comma(int64(i.book.TotalWords)), i.book.AnalyzedAt.Format("2006-01-02 15:04"))
	if i.book.Author != "" {
		desc = fmt.Sprintf("%s | %s", i.book.Author, desc)
	}
	return desc
}

type model struct {
	store        *storage.SQLiteStore
	books        []models.BookSummary
	list         list.Model
	viewport     viewport.Model
	selectedBook *models.BookSummary
	report       string
	width        int
	height       int
	ready        bool
	err          error
	searchMode   bool
}

func initialModel(store *storage.SQLiteStore) model {
	items := []list.Item{}

	books, err := store.ListBooks(100, 0)
	if err == nil {
		for _, book := range books {
			items = append(items, listItem{book: book})
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Library"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	vp := viewport.New(0, 0)
	vp.HighPerformanceRendering = false
	vp.SetContent("Select a book to view its report")

	return model{
		store:    store,
		books:    books,
		list:     l,
		viewport: vp,
		err:      err,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.ready = true
		}

		listWidth := m.width / 3
		m.list.SetSize(listWidth, m.height-2)

		m.viewport.Width = m.width - listWidth - 4
		m.viewport.Height = m.height - 4

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "enter":
			if item, ok := m.list.SelectedItem().(listItem); ok {
				book := item.book
				m.selectedBook = &book
				report, _, err := m.store.GetReport(book.ID)
				if err == nil {
					m.report = report
				} else {
					m.report = fmt.Sprintf("Failed to load report: %v", err)
				}
				m.updateViewport()
			}

		case "/":
			m.searchMode = true
			m.list.SetFilteringEnabled(true)

		case "esc":
			m.searchMode = false
			m.list.SetFilteringEnabled(false)
		}
	}

	if !m.searchMode {
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) updateViewport() {
	if m.selectedBook == nil {
		m.viewport.SetContent("Select a book to view its report")
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.selectedBook.Title))
	content.WriteString("\n\n")
	if m.selectedBook.Author != "" {
		content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Author:"), m.selectedBook.Author))
	}
	content.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Chapters:"), m.selectedBook.ChapterCount))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Words:"), humanize.Comma(int64(m.selectedBook.TotalWords))))
	content.WriteString(fmt.Sprintf("%s $%.4f\n", labelStyle.Render("Estimated cost:"), m.selectedBook.TotalCost))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Analyzed:"), m.selectedBook.AnalyzedAt.Format("2006-01-02 15:04:05")))
	content.WriteString("\n" + strings.Repeat("─", 40) + "\n\n")
	content.WriteString(m.report)

	m.viewport.SetContent(content.String())
	m.viewport.GotoTop()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.err)
	}

	listView := paneStyle.
		Width(m.width/3 - 2).
		Height(m.height - 2).
		Render(m.list.View())

	contentView := paneStyle.
		Width(m.width - m.width/3 - 2).
		Height(m.height - 2).
		Render(m.viewport.View())

	help := helpStyle.Render("  j/k: navigate • enter: select • /: search • q: quit")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		listView,
		contentView,
	) + "\n" + help
}
