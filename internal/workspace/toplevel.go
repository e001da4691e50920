package workspace

import (
	"fmt"
	"regexp"
	"strings"
)

var worldFolderRe = regexp.MustCompile(`^shaders(/world-?\d+)?/[^/]+$`)

var topLevelNames = buildTopLevelNames()

// buildTopLevelNames enumerates the closed set of OptiFine program
// names, one entry per extension in {fsh,vsh,gsh,csh}. composite,
// deferred, prepare and shadowcomp accept a 1-99 pass suffix.
func buildTopLevelNames() map[string]bool {
	set := make(map[string]bool, 1716)
	bare := []string{"composite", "deferred", "prepare", "shadowcomp"}
	numbered := []string{"composite", "deferred", "prepare", "shadowcomp"}
	fixed := []string{
		"composite_pre", "deferred_pre", "final",
		"gbuffers_armor_glint", "gbuffers_basic", "gbuffers_beaconbeam", "gbuffers_block",
		"gbuffers_clouds", "gbuffers_damagedblock", "gbuffers_entities", "gbuffers_entities_glowing",
		"gbuffers_hand", "gbuffers_hand_water", "gbuffers_item", "gbuffers_line",
		"gbuffers_skybasic", "gbuffers_skytextured", "gbuffers_spidereyes", "gbuffers_terrain",
		"gbuffers_terrain_cutout", "gbuffers_terrain_cutout_mip", "gbuffers_terrain_solid",
		"gbuffers_textured", "gbuffers_textured_lit", "gbuffers_water", "gbuffers_weather",
		"shadow", "shadow_cutout", "shadow_solid",
	}
	for _, ext := range []string{"fsh", "vsh", "gsh", "csh"} {
		for _, name := range bare {
			set[fmt.Sprintf("%s.%s", name, ext)] = true
		}
		for _, name := range numbered {
			for i := 1; i <= 99; i++ {
				set[fmt.Sprintf("%s%d.%s", name, i, ext)] = true
			}
		}
		for _, name := range fixed {
			set[fmt.Sprintf("%s.%s", name, ext)] = true
		}
	}
	return set
}

// IsTopLevel reports whether a workspace-root-relative path (forward
// slashes, no leading slash) names a recognized OptiFine shader program
// entry point: shaders/<program>.<ext> or shaders/world<N>/<program>.<ext>.
func IsTopLevel(relPath string) bool {
	if !worldFolderRe.MatchString(relPath) {
		return false
	}
	parts := strings.Split(relPath, "/")
	if len(parts) != 2 && len(parts) != 3 {
		return false
	}
	return topLevelNames[parts[len(parts)-1]]
}
