package handlers

import (
	"log"
	"net/http"
	"time"

	"url-shortener-service/models"
	"url-shortener-service/utils"
)

// ClickQueue is the channel for async click processing. Workers drain
// it in batches; the redirect path never blocks on it.
var ClickQueue = make(chan models.ClickEvent, 10000)

// EnqueueClick queues a click event without blocking. A full queue
// drops the event with a log line; analytics loss never delays or
// fails the redirect.
func EnqueueClick(event models.ClickEvent) {
	select {
	case ClickQueue <- event:
	default:
		log.Printf("Warning: click queue full, dropping event for %s", event.ShortCode)
	}
}

// buildClickEvent captures best-effort visit attributes from the
// request. Missing headers leave fields empty.
func buildClickEvent(r *http.Request, shortCode string) models.ClickEvent {
	device, browser, os := utils.ParseUserAgent(r.UserAgent())
	country, city := utils.ExtractGeo(r)

	ip := utils.ExtractIP(r)
	return models.ClickEvent{
		ShortCode: shortCode,
		Timestamp: time.Now(),
		Visit: models.ClickInput{
			IP:          ip,
			Country:     country,
			City:        city,
			Device:      device,
			Browser:     browser,
			OS:          os,
			Referer:     r.Referer(),
			VisitorHash: utils.HashVisitor(ip, r.UserAgent()),
		},
	}
}
