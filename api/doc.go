// Package api exposes the dispatcher over HTTP.
//
// Polling endpoints:
//
//	GET  /api/commands                   active command snapshots
//	GET  /api/commands/{runID}           one snapshot, 404 once retention expires
//	POST /api/commands/{runID}/cancel    {"cancelled": bool}
//	GET  /api/progress/{runID}           {"messages": [...], "completed": bool, "result": string|null}
//
// Story endpoints enqueue pipeline commands and answer 202 with the run id:
//
//	POST /api/stories                    create a story
//	GET  /api/stories                    list stories
//	GET  /api/stories/{storyID}          one story
//	POST /api/stories/{storyID}/chapters generate_chapters
//	POST /api/stories/{storyID}/speech   generate_tts_audio
//	POST /api/stories/{storyID}/tags     regenerate_tags
//
// GET /ws upgrades to the notification hub, and /health/live and
// /health/ready serve the probes.
package api
