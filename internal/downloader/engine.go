package downloader

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/haryoiro/ytmgrab/internal/constants"
)

// Request describes one yt-dlp invocation.
type Request struct {
	URL            string
	OutputTemplate string
	AudioFormat    string
	AudioQuality   string
	Retries        int
}

// Engine fetches a single URL to disk. percent is called with 0..100.
type Engine interface {
	Download(ctx context.Context, req Request, percent func(float64)) error
}

// YtDlp drives the yt-dlp binary found in PATH.
type YtDlp struct{}

func (YtDlp) Download(ctx context.Context, req Request, percent func(float64)) error {
	quality, ok := constants.AudioQualityMap[req.AudioQuality]
	if !ok {
		quality = req.AudioQuality
	}

	dl := ytdlp.New().
		NoPlaylist().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat(req.AudioFormat).
		AudioQuality(quality).
		EmbedThumbnail().
		EmbedMetadata().
		Retries(strconv.Itoa(req.Retries)).
		Output(req.OutputTemplate)

	if percent != nil {
		dl.ProgressFunc(constants.ProgressInterval, func(update ytdlp.ProgressUpdate) {
			if update.TotalBytes > 0 {
				percent(float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100)
			}
		})
	}

	start := time.Now()
	if _, err := dl.Run(ctx, req.URL); err != nil {
		return fmt.Errorf("yt-dlp %s: %w", req.URL, err)
	}
	if percent != nil {
		percent(100)
	}

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debugf("fetched %s", req.URL)
	return nil
}
