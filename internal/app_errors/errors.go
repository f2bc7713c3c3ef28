package app_errors

import "errors"

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")

var ErrCourseNotFound = errors.New("course not found")
var ErrCourseIDRequired = errors.New("course id is required")
var ErrNotImage = errors.New("not image")
var ErrFileSize = errors.New("file size error")
var ErrImagesDisabled = errors.New("image storage is not configured")

var ErrPromoCodeRequired = errors.New("promo code is required")
var ErrInvalidPromo = errors.New("invalid promo code")
var ErrAlreadySubscribed = errors.New("you are already subscribed to this course")
var ErrSubscriptionNotFound = errors.New("subscription not found")
var ErrInvalidToken = errors.New("invalid token")
