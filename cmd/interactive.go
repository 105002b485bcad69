package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/pipeline"
)

// Styles
var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	cursorStyle  = focusedStyle
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // Green
	coverStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")) // Blue
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
)

const helpLine = "↑/↓ move | enter open | c cover | s secret | space select | e embed | x extract | g gather | p password | t/r toggle | q quit"

type fileItem struct {
	path     string
	name     string
	isDir    bool
	selected bool
}

type model struct {
	path   string
	files  []fileItem
	cursor int
	status string

	cover  string
	secret string

	cfg       pipeline.Config
	password  textinput.Model
	editingPW bool
	quitting  bool
}

func initialModel(dir string, cfg pipeline.Config) model {
	ti := textinput.New()
	ti.Placeholder = "password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.SetValue(cfg.Password)

	m := model{
		path:     dir,
		status:   helpLine,
		cfg:      cfg,
		password: ti,
	}
	m.loadFiles()
	return m
}

func (m *model) loadFiles() {
	entries, err := os.ReadDir(m.path)
	if err != nil {
		m.status = "Error reading directory"
		return
	}

	m.files = []fileItem{{name: "..", isDir: true, path: filepath.Dir(m.path)}}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		m.files = append(m.files, fileItem{
			name:  e.Name(),
			isDir: e.IsDir(),
			path:  filepath.Join(m.path, e.Name()),
		})
	}
	m.cursor = 0
}

func (m model) current() fileItem {
	return m.files[m.cursor]
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.editingPW {
		return m.updatePassword(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.files)-1 {
				m.cursor++
			}

		case "enter":
			if f := m.current(); f.isDir {
				m.path = f.path
				m.loadFiles()
			}

		case " ":
			if !m.current().isDir {
				m.files[m.cursor].selected = !m.files[m.cursor].selected
			}

		case "c":
			if f := m.current(); !f.isDir {
				m.cover = f.path
				m.status = "Cover: " + f.name
			}

		case "s":
			if f := m.current(); !f.isDir {
				m.secret = f.path
				m.status = "Secret: " + f.name
			}

		case "t":
			m.cfg.Encrypt = !m.cfg.Encrypt
		case "r":
			m.cfg.Randomize = !m.cfg.Randomize

		case "p":
			m.editingPW = true
			m.password.Focus()
			return m, textinput.Blink

		case "e":
			if m.cover == "" || m.secret == "" {
				m.status = "Mark a cover (c) and a secret (s) first"
				return m, nil
			}
			m.status = "Embedding..."
			return m, embedFiles(m.cover, m.secret, m.cfg)

		case "x":
			if f := m.current(); !f.isDir {
				m.status = "Extracting..."
				return m, extractFile(f.path, m.cfg)
			}

		case "g":
			var paths []string
			for _, f := range m.files {
				if f.selected {
					paths = append(paths, f.path)
				}
			}
			if len(paths) == 0 {
				m.status = "No files selected!"
				return m, nil
			}
			m.status = "Gathering..."
			return m, gatherFiles(paths, m.cfg)
		}

	case statusMsg:
		m.status = string(msg)
		if strings.HasPrefix(m.status, "Success") {
			for i := range m.files {
				m.files[i].selected = false
			}
			cursor := m.cursor
			m.loadFiles()
			m.cursor = min(cursor, len(m.files)-1)
		}
	}

	return m, nil
}

func (m model) updatePassword(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter, tea.KeyEsc:
			if key.Type == tea.KeyEnter {
				m.cfg.Password = m.password.Value()
				m.status = "Password set"
			} else {
				m.password.SetValue(m.cfg.Password)
			}
			m.editingPW = false
			m.password.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return m, cmd
}

type statusMsg string

// embedFiles writes <cover>_stego.bmp next to the cover.
func embedFiles(coverPath, secretPath string, cfg pipeline.Config) tea.Cmd {
	return func() tea.Msg {
		out := stegoName(filepath.Dir(coverPath), coverPath, "_stego")
		if _, err := os.Stat(out); err == nil {
			return statusMsg(fmt.Sprintf("Error: %s already exists", filepath.Base(out)))
		}
		cover, err := loadBitmap(coverPath)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", describe(err)))
		}
		secret, err := os.ReadFile(secretPath)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", err))
		}
		res, err := pipeline.Embed(context.Background(), cover, filepath.Base(secretPath), secret, cfg)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", describe(err)))
		}
		if err := saveBitmap(out, res.Image); err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", err))
		}
		return statusMsg(fmt.Sprintf("Success! Wrote %s (PSNR %.2f dB)", filepath.Base(out), res.PSNR))
	}
}

// extractFile writes the hidden file next to the stego image.
func extractFile(path string, cfg pipeline.Config) tea.Cmd {
	return func() tea.Msg {
		img, err := loadBitmap(path)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", describe(err)))
		}
		res, err := pipeline.Extract(context.Background(), img, cfg)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", describe(err)))
		}
		return saveRecovered(filepath.Dir(path), res)
	}
}

// gatherFiles rebuilds a scattered file from the selected images.
func gatherFiles(paths []string, cfg pipeline.Config) tea.Cmd {
	return func() tea.Msg {
		var shards []*pipeline.Shard
		for _, p := range paths {
			img, err := loadBitmap(p)
			if err != nil {
				return statusMsg(fmt.Sprintf("Error: %s: %v", filepath.Base(p), err))
			}
			s, err := pipeline.ExtractShard(context.Background(), img, cfg)
			if err != nil {
				return statusMsg(fmt.Sprintf("Error: %s: %v", filepath.Base(p), err))
			}
			shards = append(shards, s)
		}
		res, err := pipeline.Gather(shards)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", describe(err)))
		}
		return saveRecovered(filepath.Dir(paths[0]), res)
	}
}

func saveRecovered(dir string, res *pipeline.Result) tea.Msg {
	name, err := safeName(res.Filename)
	if err != nil {
		return statusMsg(fmt.Sprintf("Error: %v", err))
	}
	out := filepath.Join(dir, name)
	if _, err := os.Stat(out); err == nil {
		return statusMsg(fmt.Sprintf("Error: %s already exists", name))
	}
	if err := writeFileAtomic(out, res.Secret, 0600); err != nil {
		return statusMsg(fmt.Sprintf("Error: %v", err))
	}
	return statusMsg(fmt.Sprintf("Success! Recovered %s (%d bytes)", name, len(res.Secret)))
}

func (m model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\n\n", m.path)

	for i, file := range m.files {
		if m.cursor == i {
			b.WriteString(cursorStyle.Render(">"))
		} else {
			b.WriteString(" ")
		}

		var line string
		switch {
		case file.isDir:
			line = fmt.Sprintf("[DIR] %s", file.name)
		case file.selected:
			line = fmt.Sprintf("[x] %s", file.name)
		default:
			line = fmt.Sprintf("[ ] %s", file.name)
		}

		switch {
		case file.path == m.cover:
			line = coverStyle.Render(line + "  (cover)")
		case file.path == m.secret:
			line = coverStyle.Render(line + "  (secret)")
		case file.selected:
			line = checkedStyle.Render(line)
		}
		b.WriteString(" " + line + "\n")
	}

	fmt.Fprintf(&b, "\nencrypt: %v  randomize: %v  threshold: %d\n", m.cfg.Encrypt, m.cfg.Randomize, m.cfg.Threshold)
	if m.editingPW {
		b.WriteString("Password: " + m.password.View() + "\n")
	}
	fmt.Fprintf(&b, "\n%s\n", m.status)
	b.WriteString(dimStyle.Render(helpLine))
	return docStyle.Render(b.String())
}

// Cobra command setup
var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Interactive terminal UI for embedding and extracting",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, pw, err := pipelineConfig(cmd)
		if err != nil {
			return err
		}
		defer pw.Destroy()
		cfg.Logger = nil

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		p := tea.NewProgram(initialModel(cwd, cfg))
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
