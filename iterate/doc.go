// Package iterate pages through list endpoints.
//
// An Iterator wraps a bound client.Call and reissues it with adjusted
// paging parameters, one page per Next:
//
//	it := iterate.Cursor(c.Bind("GET", followers.Child("ids")), client.Params{
//		"screen_name": "twitter",
//	})
//	for {
//		page, err := it.Next(ctx)
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		process(page)
//	}
//
// Cursor follows next_cursor until the API reports 0. MaxID walks a
// timeline backwards and stops at the first empty page. SinceID polls
// a timeline forwards forever, sleeping between polls; it never
// returns io.EOF.
package iterate
