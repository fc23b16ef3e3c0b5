package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide explains where the two tokens used by vkbackup come from
func ShowTokenGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	lines := []string{
		rule,
		"TOKENS NEEDED BY VKBACKUP",
		rule,
		"",
		"1. VK access token (needs the photos scope)",
		"   - Create a Standalone app at https://vk.com/apps?act=manage",
		"   - Open the implicit flow URL in a browser, replacing APP_ID:",
		"     https://oauth.vk.com/authorize?client_id=APP_ID&scope=photos&response_type=token&v=5.199",
		"   - Copy access_token=... from the address bar after you approve",
		"",
		"2. Yandex.Disk OAuth token",
		"   - Register an app at https://oauth.yandex.ru with Disk write access",
		"   - Get a debug token: https://oauth.yandex.ru/authorize?response_type=token&client_id=CLIENT_ID",
		"   - Or use the Polygon page: https://yandex.ru/dev/disk/poligon/",
		"",
		"3. VK user id",
		"   - The numeric id of the profile to back up (id12345 in the profile URL)",
		"",
		"Both tokens grant access to your accounts. vkbackup keeps them in the",
		"system keychain or an encrypted file and never prints them in full.",
		rule,
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// ShowQuickGuide is the one-line reminder shown at the login prompt
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "Need: VK access token (photos scope), Yandex.Disk OAuth token, VK user id.")
	fmt.Fprintln(w, "Run 'vkbackup auth guide' for details.")
}
