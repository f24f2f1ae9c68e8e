package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"trenchi/matching"
	"trenchi/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
)

// ProfilePayload is the request body for creating or updating a profile.
// ReferredBy is only honored at creation time.
type ProfilePayload struct {
	Name                       string   `json:"name"`
	Age                        int      `json:"age"`
	Gender                     string   `json:"gender"`
	Seeking                    string   `json:"seeking"`
	Bio                        string   `json:"bio"`
	Twitter                    string   `json:"twitter"`
	TradingStyle               string   `json:"tradingStyle"`
	Location                   string   `json:"location"`
	LookingFor                 string   `json:"lookingFor"`
	FavoriteCoin               string   `json:"favoriteCoin"`
	TotalWalletValue           string   `json:"totalWalletValue"`
	CryptoInterests            string   `json:"cryptoInterests"`
	FavoriteBlockchainNetworks string   `json:"favoriteBlockchainNetworks"`
	Images                     []string `json:"images"`
	ReferredBy                 string   `json:"referredBy"`
}

func (p *ProfilePayload) toProfile(wallet string) *models.Profile {
	return &models.Profile{
		WalletAddress:              wallet,
		Name:                       p.Name,
		Age:                        p.Age,
		Gender:                     p.Gender,
		Seeking:                    p.Seeking,
		Bio:                        p.Bio,
		Twitter:                    p.Twitter,
		TradingStyle:               p.TradingStyle,
		Location:                   p.Location,
		LookingFor:                 p.LookingFor,
		FavoriteCoin:               p.FavoriteCoin,
		TotalWalletValue:           p.TotalWalletValue,
		CryptoInterests:            p.CryptoInterests,
		FavoriteBlockchainNetworks: p.FavoriteBlockchainNetworks,
		Images:                     p.Images,
	}
}

// GetProfile returns the profile for a wallet address. Unknown wallets get a
// 200 with new-user defaults instead of a 404 so the frontend can route to
// onboarding without treating it as an error.
func GetProfile(c *gin.Context) {
	wallet := c.Param("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	profile, err := engine.Get(ctx, wallet)
	if errors.Is(err, matching.ErrProfileNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"walletAddress":              wallet,
			"isNewUser":                  true,
			"totalPoints":                0,
			"referralCount":              0,
			"referralPoints":             0,
			"cryptoInterests":            models.CryptoInterests[0],
			"favoriteBlockchainNetworks": models.BlockchainNetworks[0],
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SaveProfile creates the profile on first submission and applies a partial
// update on later ones. Referral credit is only granted on creation.
func SaveProfile(c *gin.Context) {
	wallet := c.Param("walletAddress")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wallet address is required"})
		return
	}

	var payload ProfilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if _, err := engine.Get(ctx, wallet); err == nil {
		updated, err := engine.UpdateProfile(ctx, wallet, payload.toProfile(wallet))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
		return
	} else if !errors.Is(err, matching.ErrProfileNotFound) {
		respondError(c, err)
		return
	}

	created, err := engine.CreateProfile(ctx, payload.toProfile(wallet), payload.ReferredBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteProfile removes the profile and every trace of it in other profiles:
// referral credits are reversed and relationship references are pulled.
// Only the wallet the session was issued for can delete itself.
func DeleteProfile(c *gin.Context) {
	wallet := c.Param("walletAddress")
	if c.GetString("walletAddress") != wallet {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete another wallet's profile"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := engine.DeleteProfile(ctx, wallet); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}

// UploadPhoto stores a profile photo on Cloudinary and appends the returned
// URL to the profile's image list. Requires CLOUDINARY_URL.
func UploadPhoto(c *gin.Context) {
	wallet := c.Param("walletAddress")
	if c.GetString("walletAddress") != wallet {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot modify another wallet's profile"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	photoFile, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photo file provided"})
		return
	}
	defer photoFile.Close()

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cloudinary configuration error"})
		return
	}

	uploadParams := uploader.UploadParams{
		Folder:         "trenchi/photos",
		PublicID:       wallet + "_" + time.Now().Format("20060102150405"),
		Transformation: "c_limit,w_800,h_800,q_auto",
	}
	uploadResult, err := cld.Upload.Upload(ctx, photoFile, uploadParams)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	profile, err := engine.Get(ctx, wallet)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := engine.UpdateProfile(ctx, wallet, &models.Profile{
		Images: append(profile.Images, uploadResult.SecureURL),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": uploadResult.SecureURL, "images": updated.Images})
}
