// Package pkg provides the core libraries behind the deskkit toolbox.
//
// # Overview
//
// deskkit bundles small single-purpose image and document utilities. The
// pkg directory is organized into four areas:
//
//  1. Image tools: [raster], [bgremove], [adjust], [transform], [idphoto],
//     [watermark], [qr], [palette]
//  2. Document tools: [pdfdoc], [extract], [convert]
//  3. Storage: [kv], [history], [vault]
//  4. Plumbing: [pipeline], [server], [config], [errors], [observability],
//     [fonts], [buildinfo]
//
// # Architecture
//
// Image tools share one flow:
//
//	file on disk
//	     ↓
//	[raster] decode into *image.NRGBA
//	     ↓
//	[pipeline] Runner applies one Step (bgremove, resize, watermark, ...)
//	     ↓
//	[raster] encode (PNG, JPEG, WebP, GIF, BMP, TIFF)
//	     ↓
//	<name>_<tool>_<timestamp>.<ext>
//
// Document conversion runs LibreOffice headless through [convert]; [server]
// exposes it as POST /api/pdf-convert.
//
// Palettes, text extractions and watermark runs are recorded in capped
// [history] lists, and short notes go to the [vault]. Both sit on a
// [kv].Store, which can be a local directory, Redis or MongoDB.
//
// # Errors
//
// Every package returns *[errors].Error values with a machine-readable code
// (INVALID_INPUT, NOT_FOUND, CONVERSION_FAILED, ...). The CLI maps codes to
// exit statuses and the server maps them to HTTP statuses.
package pkg
