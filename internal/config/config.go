package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Notion
		Kindle
		Display
		HTTP
	}

	Notion struct {
		Token      string
		DatabaseID string
	}
	Kindle struct {
		ClippingsPath string
	}
	Display struct {
		Location      bool // Show page/location metadata under each highlight
		HighlightDate bool // Show the highlight date under each highlight
		BookCover     bool // Resolve and attach book covers
	}
	HTTP struct {
		Timeout time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("clippings_path", DefaultClippingsPath)
	v.SetDefault("enable_location", true)
	v.SetDefault("enable_highlight_date", true)
	v.SetDefault("enable_book_cover", true)
	v.SetDefault("http_timeout", "30s")

	return &Config{
		Notion: Notion{
			Token:      v.GetString("NOTION_TOKEN"),
			DatabaseID: v.GetString("NOTION_DATABASE_ID"),
		},
		Kindle: Kindle{
			ClippingsPath: v.GetString("CLIPPINGS_PATH"),
		},
		Display: Display{
			Location:      v.GetBool("ENABLE_LOCATION"),
			HighlightDate: v.GetBool("ENABLE_HIGHLIGHT_DATE"),
			BookCover:     v.GetBool("ENABLE_BOOK_COVER"),
		},
		HTTP: HTTP{
			Timeout: v.GetDuration("HTTP_TIMEOUT"),
		},
	}
}
