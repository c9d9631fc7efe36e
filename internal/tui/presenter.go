package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BannerKind selects the styling and prefix of a transient notification.
type BannerKind int

const (
	BannerInfo BannerKind = iota
	BannerSuccess
	BannerWarning
	BannerError
)

const defaultBannerDuration = 5 * time.Second

// Badge ids used by the console.
const (
	badgeBackend    = "backend"
	badgeCollection = "collection"
	badgeFeed       = "feed"
)

type banner struct {
	id      uint64
	kind    BannerKind
	message string
}

type bannerExpireMsg struct {
	id uint64
}

type badge struct {
	text  string
	style lipgloss.Style
}

// presenter owns transient banners and persistent status badges. Banners
// stack, expire independently, and can be dismissed by the operator before
// expiry; badges stay until replaced. Background-poll failures never reach
// the presenter; that policy lives in the app's update loop.
type presenter struct {
	nextID     uint64
	banners    []banner
	badges     map[string]badge
	badgeOrder []string
}

func newPresenter() *presenter {
	return &presenter{badges: make(map[string]badge)}
}

// Notify queues a banner and returns the command that will expire it.
// A non-positive duration uses the default.
func (p *presenter) Notify(kind BannerKind, message string, duration time.Duration) tea.Cmd {
	if duration <= 0 {
		duration = defaultBannerDuration
	}
	p.nextID++
	id := p.nextID
	p.banners = append(p.banners, banner{id: id, kind: kind, message: message})
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return bannerExpireMsg{id: id}
	})
}

// HandleExpire removes the banner named by the message. Expiry of an
// already-dismissed banner is a no-op.
func (p *presenter) HandleExpire(msg bannerExpireMsg) {
	p.remove(msg.id)
}

// DismissOldest removes the banner that has been visible longest.
func (p *presenter) DismissOldest() {
	if len(p.banners) == 0 {
		return
	}
	p.banners = p.banners[1:]
}

// BannerCount reports how many banners are stacked.
func (p *presenter) BannerCount() int {
	return len(p.banners)
}

// SetBadge installs (or replaces) a persistent status indicator.
func (p *presenter) SetBadge(id, text string, style lipgloss.Style) {
	if _, ok := p.badges[id]; !ok {
		p.badgeOrder = append(p.badgeOrder, id)
	}
	p.badges[id] = badge{text: text, style: style}
}

// Badge returns the current text of a badge, if set.
func (p *presenter) Badge(id string) (string, bool) {
	b, ok := p.badges[id]
	return b.text, ok
}

func (p *presenter) remove(id uint64) {
	for i, b := range p.banners {
		if b.id == id {
			p.banners = append(p.banners[:i], p.banners[i+1:]...)
			return
		}
	}
}

var (
	bannerInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	bannerSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FBF67"))
	bannerWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5A50A"))
	bannerErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	badgeOKStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4FBF67"))
	badgeWarnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5A50A"))
	badgeDownStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	badgeDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func (k BannerKind) prefix() string {
	switch k {
	case BannerSuccess:
		return "✔"
	case BannerWarning:
		return "⚠"
	case BannerError:
		return "✘"
	default:
		return "·"
	}
}

func (k BannerKind) style() lipgloss.Style {
	switch k {
	case BannerSuccess:
		return bannerSuccessStyle
	case BannerWarning:
		return bannerWarningStyle
	case BannerError:
		return bannerErrorStyle
	default:
		return bannerInfoStyle
	}
}

// renderBanners stacks every live banner, oldest first.
func (p *presenter) renderBanners() string {
	if len(p.banners) == 0 {
		return ""
	}
	lines := make([]string, 0, len(p.banners))
	for _, b := range p.banners {
		lines = append(lines, b.kind.style().Render(fmt.Sprintf("%s %s", b.kind.prefix(), b.message)))
	}
	return strings.Join(lines, "\n")
}

// renderBadges joins every badge in installation order.
func (p *presenter) renderBadges() string {
	if len(p.badgeOrder) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.badgeOrder))
	for _, id := range p.badgeOrder {
		b := p.badges[id]
		parts = append(parts, b.style.Render(b.text))
	}
	return strings.Join(parts, badgeDimStyle.Render("  │  "))
}
