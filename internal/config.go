package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// MediaKind selects which asset variant a file becomes.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

type Config struct {
	ImageExt       []string `mapstructure:"image_extensions"`
	VideoExt       []string `mapstructure:"video_extensions"`
	ImagePreferred string   `mapstructure:"image_preferred"`
	VideoPreferred string   `mapstructure:"video_preferred"`
	HashDB         string   `mapstructure:"hash_db"`
	LogFile        string   `mapstructure:"log_file"`
	ExiftoolBin    string   `mapstructure:"exiftool_bin"`
	FFmpegBin      string   `mapstructure:"ffmpeg_bin"`
}

func LoadConfig() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find user config dir: %w", err)
	}

	viper.SetConfigName("silmaril")
	viper.SetConfigType("toml")
	viper.AddConfigPath(filepath.Join(configDir, "silmaril"))

	viper.SetDefault("image_extensions", []string{".jpg", ".jpeg", ".png", ".heic"})
	viper.SetDefault("video_extensions", []string{".mp4", ".mpg", ".mov", ".m4v", ".mts", ".mkv"})
	viper.SetDefault("image_preferred", ".jpg")
	viper.SetDefault("video_preferred", ".mp4")
	viper.SetDefault("hash_db", "pictures.db")
	viper.SetDefault("log_file", "silmaril.log")
	viper.SetDefault("exiftool_bin", "exiftool")
	viper.SetDefault("ffmpeg_bin", "ffmpeg")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; that's OK, just use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Extensions returns the allowlist for the given kind, or both lists combined
// when kind is empty.
func (c *Config) Extensions(kind MediaKind) []string {
	switch kind {
	case KindImage:
		return c.ImageExt
	case KindVideo:
		return c.VideoExt
	}
	exts := make([]string, 0, len(c.ImageExt)+len(c.VideoExt))
	exts = append(exts, c.ImageExt...)
	exts = append(exts, c.VideoExt...)
	return exts
}

// KindOf classifies an extension, returning false when it is in neither list.
func (c *Config) KindOf(ext string) (MediaKind, bool) {
	for _, e := range c.ImageExt {
		if ext == e {
			return KindImage, true
		}
	}
	for _, e := range c.VideoExt {
		if ext == e {
			return KindVideo, true
		}
	}
	return "", false
}
