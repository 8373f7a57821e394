// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package zoom

// Clip is one entry from the Zoom clips listing, carrying only the fields
// the pipeline persists.
type Clip struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	DownloadURL        string `json:"download_url"`
	RecordingMeetingID string `json:"recording_meeting_id"`
}

// IsOnTheFly reports whether the clip was created ad hoc rather than cut from
// a meeting recording. Zoom marks recording-derived clips with a
// recording_meeting_id; a clip without one is "on the fly" and is the only
// kind this pipeline stores.
func (c *Clip) IsOnTheFly() bool {
	return c.RecordingMeetingID == ""
}

// MeetingIDOrNil returns the recording meeting ID as a nullable value for
// persistence: nil when the clip is on the fly.
func (c *Clip) MeetingIDOrNil() *string {
	if c.RecordingMeetingID == "" {
		return nil
	}
	id := c.RecordingMeetingID
	return &id
}
