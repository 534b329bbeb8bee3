package handler

import "github.com/labstack/echo/v4"

// respond writes the standard success envelope used by every JSON
// endpoint: {"success": true, "data": ..., "message": ...}.
func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, echo.Map{
		"success": true,
		"data":    data,
		"message": message,
	})
}

// fail writes the standard error envelope: {"success": false, "message": ...}.
// Internal detail never leaks through this path; callers pass a fixed,
// human-readable message and log anything sensitive server side.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"message": message,
	})
}
