package parser

import (
	"path/filepath"
	"testing"
)

func testResolver() HomeResolver {
	return HomeResolver{Home: "/home/nugget"}
}

// scenario 1: "바탕화면의 .md 파일을 docs 폴더에 넣어줘"
func TestSmartFileOpDesktopMdToDocs(t *testing.T) {
	r := Parse("바탕화면의 .md 파일을 docs 폴더에 넣어줘", testResolver())

	if r.Type != TypeSmartFileOp {
		t.Fatalf("Type = %q, want smart_file_op", r.Type)
	}
	wantSource := filepath.Join("/home/nugget", "Desktop")
	if r.Source != wantSource {
		t.Errorf("Source = %q, want %q", r.Source, wantSource)
	}
	if r.Filter != ".md" {
		t.Errorf("Filter = %q, want .md", r.Filter)
	}
	if r.Target != "docs" {
		t.Errorf("Target = %q, want docs", r.Target)
	}
	if r.AutoCategory {
		t.Errorf("AutoCategory = true, want false")
	}
}

// scenario 2: "clean up desktop"
func TestSmartFileOpCleanUpDesktop(t *testing.T) {
	r := Parse("clean up desktop", testResolver())

	if r.Type != TypeSmartFileOp {
		t.Fatalf("Type = %q, want smart_file_op", r.Type)
	}
	wantSource := filepath.Join("/home/nugget", "Desktop")
	if r.Source != wantSource {
		t.Errorf("Source = %q, want %q", r.Source, wantSource)
	}
	if r.Filter != "*" {
		t.Errorf("Filter = %q, want *", r.Filter)
	}
	if r.Target != "auto" {
		t.Errorf("Target = %q, want auto", r.Target)
	}
	if !r.AutoCategory {
		t.Errorf("AutoCategory = false, want true")
	}
}

func TestSmartFileOpUnrecognisedSourceDefaultsToDesktop(t *testing.T) {
	r := Parse("organize .jpg files into screenshots", testResolver())

	if r.Type != TypeSmartFileOp {
		t.Fatalf("Type = %q, want smart_file_op", r.Type)
	}
	wantSource := filepath.Join("/home/nugget", "Desktop")
	if r.Source != wantSource {
		t.Errorf("Source = %q, want %q", r.Source, wantSource)
	}
	if r.Target != "screenshots" {
		t.Errorf("Target = %q, want screenshots", r.Target)
	}
}

// invariant 7: setting wins over character_change on input that names a
// known preset through "become" phrasing, which character_change's own
// English patterns deliberately never use.
func TestSettingWinsOverCharacterChangeOnPresetWord(t *testing.T) {
	r := Parse("become a dragon", testResolver())

	if r.Type != TypeSetting {
		t.Fatalf("Type = %q, want setting", r.Type)
	}
	if r.Preset != "dragon" {
		t.Errorf("Preset = %q, want dragon", r.Preset)
	}
}

func TestCharacterChangeOnNonPresetConcept(t *testing.T) {
	r := Parse("turn into a dragon knight", testResolver())

	if r.Type != TypeCharacterChange {
		t.Fatalf("Type = %q, want character_change", r.Type)
	}
	if r.Concept != "dragon knight" {
		t.Errorf("Concept = %q, want %q", r.Concept, "dragon knight")
	}
}

func TestActionKeywordEnglish(t *testing.T) {
	r := Parse("go jump around", testResolver())

	if r.Type != TypeAction {
		t.Fatalf("Type = %q, want action", r.Type)
	}
	if r.Action != "jumping" {
		t.Errorf("Action = %q, want jumping", r.Action)
	}
}

func TestActionKeywordKorean(t *testing.T) {
	r := Parse("같이 놀자", testResolver())

	if r.Type != TypeAction {
		t.Fatalf("Type = %q, want action", r.Type)
	}
	if r.Action != "playing" {
		t.Errorf("Action = %q, want playing", r.Action)
	}
}

func TestSpeakFallback(t *testing.T) {
	r := Parse("  how's the weather today?  ", testResolver())

	if r.Type != TypeSpeak {
		t.Fatalf("Type = %q, want speak", r.Type)
	}
	if r.Text != "how's the weather today?" {
		t.Errorf("Text = %q, want trimmed input", r.Text)
	}
}

func TestModeSwitch(t *testing.T) {
	r := Parse("switch to incarnation mode", testResolver())

	if r.Type != TypeSetting {
		t.Fatalf("Type = %q, want setting", r.Type)
	}
	if r.Mode != "incarnation" {
		t.Errorf("Mode = %q, want incarnation", r.Mode)
	}
}
