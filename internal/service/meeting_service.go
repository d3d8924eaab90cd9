package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
)

// Meeting platforms.
const (
	PlatformZoom  = "Zoom"
	PlatformTeams = "Teams"
	PlatformBoth  = "Both"
)

// MeetingTemplate is a virtual-meeting practice scenario.
type MeetingTemplate struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Platform     string   `json:"platform"`
	Duration     string   `json:"duration"`
	Participants int      `json:"participants"`
	Scenario     string   `json:"scenario"`
	Prompts      []string `json:"prompts"`
}

// MeetingPerformance is the demo analysis of a speech in a meeting setting.
type MeetingPerformance struct {
	MeetingType          string   `json:"meeting_type"`
	Platform             string   `json:"platform"`
	Scenario             string   `json:"scenario"`
	PerformanceScore     float64  `json:"performance_score"`
	Feedback             []string `json:"feedback"`
	PlatformSpecificTips []string `json:"platform_specific_tips"`
	MeetingRecording     string   `json:"meeting_recording"`
}

// ScheduledPractice is a scheduled practice meeting.
type ScheduledPractice struct {
	Success       bool   `json:"success"`
	MeetingID     string `json:"meeting_id"`
	MeetingType   string `json:"meeting_type"`
	ScheduledTime string `json:"scheduled_time"`
	JoinURL       string `json:"join_url"`
	CalendarEvent string `json:"calendar_event"`
	Reminder      string `json:"reminder"`
}

var meetingTemplates = []MeetingTemplate{
	{
		ID:           "team_meeting",
		Title:        "Weekly Team Sync",
		Platform:     PlatformZoom,
		Duration:     "30 min",
		Participants: 8,
		Scenario:     "Presenting project updates to your team",
		Prompts: []string{
			"Good morning team, let's start with updates...",
			"My project is on track, this week we completed...",
			"The main challenge we're facing is...",
			"For next week, we'll focus on...",
		},
	},
	{
		ID:           "client_presentation",
		Title:        "Client Quarterly Review",
		Platform:     PlatformTeams,
		Duration:     "45 min",
		Participants: 12,
		Scenario:     "Presenting quarterly results to important clients",
		Prompts: []string{
			"Thank you for joining today's review...",
			"This quarter, we achieved 120% of our targets...",
			"Our key metrics show improvement in...",
			"Looking ahead to next quarter, we plan to...",
		},
	},
	{
		ID:           "job_interview",
		Title:        "Virtual Job Interview",
		Platform:     PlatformZoom,
		Duration:     "60 min",
		Participants: 3,
		Scenario:     "Final round interview with company executives",
		Prompts: []string{
			"Thank you for this opportunity...",
			"In my previous role, I successfully...",
			"What excites me about this position is...",
			"My approach to challenges is...",
		},
	},
	{
		ID:           "conference_talk",
		Title:        "Virtual Conference Presentation",
		Platform:     PlatformBoth,
		Duration:     "20 min",
		Participants: 50,
		Scenario:     "Presenting at an industry conference",
		Prompts: []string{
			"Hello everyone, thank you for joining...",
			"Today I'll be discussing an important trend...",
			"Let me share a case study that illustrates...",
			"In conclusion, I want to leave you with...",
		},
	},
}

var platformTips = map[string][]string{
	PlatformZoom: {
		"Use Zoom's 'pin video' to focus on key participants",
		"Enable 'touch up my appearance' for better video quality",
		"Use virtual background to minimize distractions",
		"Mute when not speaking to avoid background noise",
	},
	PlatformTeams: {
		"Use 'Together Mode' for more engaging meetings",
		"Enable live captions for accessibility",
		"Use 'Raise Hand' feature for structured discussions",
		"Share specific windows instead of entire screen",
	},
	PlatformBoth: {
		"Look at the camera, not your own video",
		"Use good lighting - face a window or use a lamp",
		"Position camera at eye level",
		"Use a headset for better audio quality",
	},
}

// MeetingService runs virtual-meeting practice scenarios.
type MeetingService struct {
	intN  func(n int) int
	float func() float64
	now   func() time.Time
	log   zerolog.Logger
}

// NewMeetingService creates a new meeting service.
func NewMeetingService(log zerolog.Logger) *MeetingService {
	return &MeetingService{
		intN:  rand.IntN,
		float: rand.Float64,
		now:   time.Now,
		log:   log,
	}
}

// WithRandom replaces the random sources.
func (s *MeetingService) WithRandom(intN func(n int) int, float func() float64) *MeetingService {
	s.intN = intN
	s.float = float
	return s
}

// Templates returns a copy of the meeting templates.
func (s *MeetingService) Templates() []MeetingTemplate {
	out := make([]MeetingTemplate, len(meetingTemplates))
	for i, t := range meetingTemplates {
		t.Prompts = append([]string(nil), t.Prompts...)
		out[i] = t
	}
	return out
}

// Template looks up a template, falling back to the first one.
func (s *MeetingService) Template(id string) MeetingTemplate {
	for _, t := range meetingTemplates {
		if t.ID == id {
			return t
		}
	}
	return meetingTemplates[0]
}

// Analyze scores a speech for the meeting type. Unknown types use the team meeting.
func (s *MeetingService) Analyze(text, meetingType string) (*MeetingPerformance, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Validation("text is required")
	}

	tmpl := s.Template(meetingType)
	score := math.Round((6.5+s.float()*3.0)*10) / 10

	s.log.Debug().Str("meeting_type", tmpl.ID).Float64("score", score).Msg("Meeting performance analyzed")

	return &MeetingPerformance{
		MeetingType:      tmpl.Title,
		Platform:         tmpl.Platform,
		Scenario:         tmpl.Scenario,
		PerformanceScore: score,
		Feedback: []string{
			fmt.Sprintf("Your tone is appropriate for a %s meeting", tmpl.Platform),
			fmt.Sprintf("Good structure for %s", strings.ToLower(tmpl.Scenario)),
			"Consider using more visual language for virtual settings",
			"Practice maintaining eye contact with the camera",
		},
		PlatformSpecificTips: PlatformTips(tmpl.Platform),
		MeetingRecording:     s.recordingURL(),
	}, nil
}

// Schedule books a mock practice session.
func (s *MeetingService) Schedule(meetingType, dateTime string) (*ScheduledPractice, error) {
	if strings.TrimSpace(meetingType) == "" {
		return nil, errors.Validation("meeting_type is required")
	}
	if strings.TrimSpace(dateTime) == "" {
		return nil, errors.Validation("date_time is required")
	}

	return &ScheduledPractice{
		Success:       true,
		MeetingID:     fmt.Sprintf("practice-%d", 10000+s.intN(90000)),
		MeetingType:   meetingType,
		ScheduledTime: dateTime,
		JoinURL:       fmt.Sprintf("https://zoom.us/j/%d", 1000000000+s.intN(9000000000)),
		CalendarEvent: "Practice session added to your calendar",
		Reminder:      "You'll receive a reminder 15 minutes before",
	}, nil
}

// PlatformTips returns tips for a platform, defaulting to the cross-platform list.
func PlatformTips(platform string) []string {
	tips, ok := platformTips[platform]
	if !ok {
		tips = platformTips[PlatformBoth]
	}
	return append([]string(nil), tips...)
}

func (s *MeetingService) recordingURL() string {
	return fmt.Sprintf("https://meeting-recordings.example.com/recording-%s-%d",
		s.now().Format("20060102"), 1000+s.intN(9000))
}
