package acquire

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/skinmgr/internal/apperr"
	"github.com/xxxsen/skinmgr/internal/install"
)

// companionTemplate is the patcher GUI settings file. lastZipDirectory keeps
// Qt's own escaped @Variant text.
const companionTemplate = `[General]
ignorebad=false
themeAccentColor=1
lastZipDirectory=@Variant(\0\0\0\x11\xff\xff\xff\xff)
themePrimaryColor=4
windowWidth=640
blacklist=true
suppressInstallConflicts=false
enableAutoRun=false
enableSystray=false
themeDarkMode=true
leaguePath={{GAME_DIR}}
windowHeight=640
verbosePatcher=false
detectGamePath=true
windowMaximised=false
enableUpdates=0
removeUnknownNames=true
lastUpdateUTCMinutes=29039901
`

// RenderCompanionConfig returns the companion configuration pointing at the
// game directory of installPath.
func RenderCompanionConfig(installPath string) string {
	return strings.Replace(companionTemplate, "{{GAME_DIR}}", install.GameDir(installPath), 1)
}

// WriteCompanionConfig writes the companion configuration to path.
func WriteCompanionConfig(path, installPath string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "companion config", "create directory", err)
	}
	if err := os.WriteFile(path, []byte(RenderCompanionConfig(installPath)), 0o644); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "companion config", "write "+path, err)
	}
	return nil
}
