package api

import (
	"context"
	"log"

	"github.com/DanielSallander/Pdf-Viewer/pkg/export"
	"github.com/DanielSallander/Pdf-Viewer/pkg/pipeline"
)

// -----------------------------------------------------------------------------
// Pipeline Events
// -----------------------------------------------------------------------------

// HubObserver forwards pipeline events to the view channel.
type HubObserver struct {
	Hub *Hub
}

// Observe implements pipeline.Observer.
func (o HubObserver) Observe(e pipeline.Event) {
	if err := o.Hub.BroadcastToChannel(ChannelView, newMessage(string(e.Type), e)); err != nil {
		log.Printf("[ws] dropping %s event: %v", e.Type, err)
	}
}

// -----------------------------------------------------------------------------
// Notifications
// -----------------------------------------------------------------------------

// HubNotifier shows license notifications through the notifications channel.
type HubNotifier struct {
	Hub *Hub
}

// NotifyFeatureBlocked implements license.Notifier.
func (n HubNotifier) NotifyFeatureBlocked(message string) error {
	return n.Hub.BroadcastToChannel(ChannelNotifications,
		newMessage(EventTypeNotification, map[string]string{"message": message}))
}

// ClearNotification implements license.Notifier.
func (n HubNotifier) ClearNotification() error {
	return n.Hub.BroadcastToChannel(ChannelNotifications, newMessage(EventTypeNotificationClear, nil))
}

// -----------------------------------------------------------------------------
// Downloads
// -----------------------------------------------------------------------------

// HubDownloads hands export requests to connected hosts over the downloads
// channel. When Store is set the document is also saved through it and its
// result returned.
type HubDownloads struct {
	Hub   *Hub
	Store export.DownloadService
}

// Download implements export.DownloadService.
func (d HubDownloads) Download(ctx context.Context, req export.Request) (export.Result, error) {
	res := export.Result{Location: "host://" + req.FileName}
	if d.Store != nil {
		stored, err := d.Store.Download(ctx, req)
		if err != nil {
			return export.Result{}, err
		}
		res = stored
	}

	if err := d.Hub.BroadcastToChannel(ChannelDownloads, newMessage(EventTypeDownload, req)); err != nil {
		return export.Result{}, err
	}
	return res, nil
}
