// Package alumnetsdk is a Go client for the alumnet invitation and bulk
// import service.
//
// The Client covers the public endpoints: invite validation, account
// creation, login, bootstrap and health. Logging in returns a Session that
// carries the access token and exposes the admin API (rosters, invites and
// institutions) and MFA management.
//
//	c := alumnetsdk.NewClient("http://localhost:8080")
//	s, err := c.Login(ctx, alumnetsdk.LoginRequest{Login: "admin_unsw", Password: pw})
//	if err != nil {
//		return err
//	}
//	res, err := s.UploadRoster(ctx, alumnetsdk.UploadRosterRequest{
//		UserType: "alumni",
//		Filename: "alumni.csv",
//		Data:     data,
//	})
//
// Request and response types double as the server's wire types.
package alumnetsdk
