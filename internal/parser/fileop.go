package parser

import (
	"regexp"
	"strings"
)

// extensionCategories maps file extensions to the closed auto-category
// taxonomy (spec §4.2.3) used when target="auto".
var extensionCategories = map[string]string{
	".jpg": "images", ".jpeg": "images", ".png": "images", ".gif": "images", ".webp": "images", ".svg": "images",
	".pdf": "documents", ".doc": "documents", ".docx": "documents", ".md": "documents", ".txt": "documents", ".odt": "documents",
	".zip": "archives", ".tar": "archives", ".gz": "archives", ".7z": "archives", ".rar": "archives",
	".mp3": "music", ".flac": "music", ".wav": "music", ".m4a": "music",
	".mp4": "video", ".mov": "video", ".mkv": "video", ".avi": "video",
}

// CategoryForExtension returns the auto-category for a file extension
// (lower-cased, leading dot included), defaulting to "other".
func CategoryForExtension(ext string) string {
	if cat, ok := extensionCategories[strings.ToLower(ext)]; ok {
		return cat
	}
	return "other"
}

var (
	// fileopKRExplicit: "바탕화면의 .md 파일을 docs 폴더에 넣어줘" (scenario 1).
	fileopKRExplicit = regexp.MustCompile(
		`(바탕화면|다운로드|문서)?의?\s*(\*|\.[a-zA-Z0-9]{1,10})\s*파일을?\s*([\p{L}\w\-]{1,30})\s*폴더(?:에)?\s*(?:넣어|정리해|옮겨)(?:줘)?`)

	// fileopENExplicit: "move .png files from downloads into screenshots folder".
	fileopENExplicit = regexp.MustCompile(
		`(?i)(?:move|sort|organize)\s+(\*|\.[a-zA-Z0-9]{1,10})\s+files?\s+(?:from\s+(desktop|downloads|documents)\s+)?(?:in)?to\s+([a-zA-Z0-9_\- ]{1,30})\s+folder`)

	// fileopENCleanUp: "clean up desktop" (scenario 2) — implies filter=*,
	// target=auto, autoCategory=true.
	fileopENCleanUp = regexp.MustCompile(`(?i)clean\s*up\s+(?:my\s+)?(desktop|downloads|documents)\b`)

	// fileopKROrganize: "바탕화면 정리해줘" — same auto semantics as above.
	fileopKROrganize = regexp.MustCompile(`(바탕화면|다운로드|문서)\s*정리해(?:줘)?`)

	// fileopENInto: "organize .md files into docs", source defaults to desktop.
	fileopENInto = regexp.MustCompile(`(?i)organize\s+(\*|\.[a-zA-Z0-9]{1,10})\s+files?\s+into\s+([a-zA-Z0-9_\- ]{1,30})`)
)

// parseSmartFileOp recognises a smart file-organisation request (spec
// §4.2.3). source defaults to desktop when the input omits it.
func parseSmartFileOp(input string, resolver PathResolver) (Result, bool) {
	if m := fileopKRExplicit.FindStringSubmatch(input); m != nil && m[2] != "" && m[3] != "" {
		return buildFileOp(resolver, firstNonEmpty(m[1], "바탕화면"), m[2], strings.TrimSpace(m[3]), false)
	}
	if m := fileopENExplicit.FindStringSubmatch(input); m != nil {
		return buildFileOp(resolver, firstNonEmpty(m[2], "desktop"), m[1], strings.TrimSpace(m[3]), false)
	}
	if m := fileopENCleanUp.FindStringSubmatch(input); m != nil {
		return buildFileOp(resolver, m[1], "*", "auto", true)
	}
	if m := fileopKROrganize.FindStringSubmatch(input); m != nil {
		return buildFileOp(resolver, m[1], "*", "auto", true)
	}
	if m := fileopENInto.FindStringSubmatch(input); m != nil {
		return buildFileOp(resolver, "desktop", m[1], strings.TrimSpace(m[2]), false)
	}
	return Result{}, false
}

func buildFileOp(resolver PathResolver, sourceAlias, filter, target string, autoCategory bool) (Result, bool) {
	source, err := resolver.Resolve(strings.ToLower(sourceAlias))
	if err != nil {
		return Result{}, false
	}
	return Result{
		Type:         TypeSmartFileOp,
		Source:       source,
		Filter:       filter,
		Target:       target,
		AutoCategory: autoCategory,
	}, true
}
