// Package vk fetches a user's profile photos from the VK API and picks the
// most liked ones.
//
// Only photos.get on the "profile" album is used. Each photo comes with a
// list of renditions; the largest by pixel area is kept and photos are
// ranked by their like count.
//
//	client := vk.NewClient(cfg.VK, cfg.HTTP.Timeout, log)
//	result, err := client.FetchTopPhotos(ctx, userID, 5)
//	if err != nil {
//		return err
//	}
//	if len(result.Records) == 0 {
//		// private profile, revoked token or empty album
//	}
package vk
